package frontmatterops

import "git.home.luguber.info/inful/pagesmith/internal/frontmatter"

// Read splits a Markdown document into parsed front matter fields and the
// raw block. Empty or missing front matter yields an empty map.
func Read(content []byte) (map[string]any, frontmatter.Block, error) {
	block, err := frontmatter.Split(content)
	if err != nil {
		return nil, block, err
	}

	fields, err := frontmatter.ParseYAML(block.Raw)
	if err != nil {
		return nil, block, err
	}
	return fields, block, nil
}

// Write serializes fields back into the block and returns the document bytes.
func Write(fields map[string]any, block frontmatter.Block) ([]byte, error) {
	raw, err := frontmatter.SerializeYAML(fields, block.Style)
	if err != nil {
		return nil, err
	}
	block.Raw = raw
	block.Had = true
	return frontmatter.Join(block), nil
}
