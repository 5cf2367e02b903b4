package schema

import (
	"math/rand"

	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
)

// App1 greets the caller and rolls dice.
var App1 = register(&App{
	Name: "app1",
	SDL: `type Query {
  hello: String @static(value: "hello user")
  rollDice(dice: Int!, sides: Int = 6): [Int]
}
`,
	Resolvers: ResolverMap{
		"Query.rollDice": rollDice,
	},
})

// App2 answers with a fixed name.
var App2 = register(&App{
	Name: "app2",
	SDL: `type Query {
  getName: String @static(value: "user")
}
`,
})

// maxDice bounds the rolls a single request may ask for.
const maxDice = 1000

func rollDice(p graphql.ResolveParams) (any, error) {
	dice, _ := p.Args["dice"].(int)
	sides, ok := p.Args["sides"].(int)
	if !ok {
		sides = 6
	}
	if dice < 0 {
		return nil, errors.Errorf("dice must not be negative, got %d", dice)
	}
	if dice > maxDice {
		return nil, errors.Errorf("dice must be at most %d, got %d", maxDice, dice)
	}
	if sides < 1 {
		return nil, errors.Errorf("sides must be at least 1, got %d", sides)
	}
	out := make([]int, dice)
	for i := range out {
		out[i] = 1 + rand.Intn(sides)
	}
	return out, nil
}
