package prelude

// bootstrapSource is compiled and run once during Install, after the
// native globals are in place. It is a plain Ursa program in the
// canonical JSON s-expression surface (the same one user programs use);
// its final expression must be an object literal whose fields become
// additional globals. Currently it adds a single helper, `range`, built
// out of List's native push method rather than any special-cased
// language construct.
const bootstrapSource = `
["let",
  [["const","range","Any",
    ["fn",[["n","Num"]],"Any",
      ["let",
        [["var","out","Any",["list"]],["var","i","Num",0]],
        ["loop",
          ["if",["invoke","i","equals","n"],
            ["break","out"],
            ["seq",
              ["invoke","out","push","i"],
              ["set","i",["invoke","i","add",1]]
            ]
          ]
        ]
      ]
    ]
  ]],
  {"range":"range"}
]
`
