package card

import (
	"cardmesh/internal/tokenizer"
	"cardmesh/internal/tree"
)

// Parse loads, tokenizes and assembles the text of c, plants the tree in the
// run's arena and binds it to c.
func Parse(b *Base, c *Card) error {
	text, err := b.Loader.ReadText(c.Path)
	if err != nil {
		return err
	}
	res, err := tokenizer.Tokenize(c.Path, text)
	if err != nil {
		return err
	}
	root, err := tree.Assemble(res)
	if err != nil {
		return err
	}
	b.Cards.Bind(c, text, b.Arena.Plant(root))
	b.Stats.Parsed.Add(1)
	b.Log.Debug("card parsed", "path", c.Path, "tokens", len(res.Tokens), "nests", len(root.Nests))
	return nil
}

// Branch returns the planted root of a bound card while it is not yet promoted.
func Branch(b *Base, c *Card) (*tree.Branch, bool) {
	if !c.Bound {
		return nil, false
	}
	br, ok := b.Arena.Get(c.Seed).(*tree.Branch)
	return br, ok
}
