package taxonomy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// document is the file form:
//
//	taxonomy:
//	  Human Skills:
//	    - Communication
//	synonyms:
//	  Communication:
//	    - communicating
//
// The taxonomy mapping is read as a node so category order survives.
type document struct {
	Taxonomy yaml.Node           `yaml:"taxonomy"`
	Synonyms map[string][]string `yaml:"synonyms"`
}

// Load reads a taxonomy file.
func Load(path string) (*Taxonomy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open taxonomy file: %w", err)
	}
	defer file.Close()

	t, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("taxonomy file %q: %w", path, err)
	}
	return t, nil
}

// Decode parses the YAML form of a taxonomy.
func Decode(r io.Reader) (*Taxonomy, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	node := &doc.Taxonomy
	if node.Kind == 0 || (node.Kind == yaml.MappingNode && len(node.Content) == 0) {
		return nil, ErrEmpty
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: taxonomy must be a mapping of category to skills", node.Line)
	}

	groups := make([]Group, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var skills []string
		if err := value.Decode(&skills); err != nil {
			return nil, fmt.Errorf("line %d: skills of %q: %w", value.Line, key.Value, err)
		}
		groups = append(groups, Group{Category: Category(key.Value), Skills: skills})
	}

	return New(groups, doc.Synonyms)
}

// Encode writes t in the form read by Decode. Synonyms are sorted by skill.
func (t *Taxonomy) Encode(w io.Writer) error {
	tax := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range t.Groups() {
		tax.Content = append(tax.Content, scalar(string(g.Category)), sequence(g.Skills))
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, scalar("taxonomy"), tax)

	if t != nil && len(t.synonyms) > 0 {
		keys := make([]string, 0, len(t.synonyms))
		for k := range t.synonyms {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		syn := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			syn.Content = append(syn.Content, scalar(k), sequence(t.synonyms[k]))
		}
		root.Content = append(root.Content, scalar("synonyms"), syn)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return fmt.Errorf("encode taxonomy: %w", err)
	}
	return enc.Close()
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func sequence(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		n.Content = append(n.Content, scalar(v))
	}
	return n
}
