package upload

import "github.com/mintly-cc/mintly/wallet/metadata"

type (
	// Document is the off-chain metadata JSON the on-chain metadata URI points to.
	Document struct {
		Name        string               `json:"name"`
		Symbol      string               `json:"symbol"`
		Description string               `json:"description"`
		Image       string               `json:"image"`
		Attributes  []metadata.Attribute `json:"attributes"`
		Properties  Properties           `json:"properties"`
	}

	Properties struct {
		Files    []File    `json:"files"`
		Category string    `json:"category"`
		Creators []Creator `json:"creators"`
	}

	File struct {
		Type string `json:"type"`
		URI  string `json:"uri"`
	}

	Creator struct {
		Address string `json:"address"`
		Share   uint8  `json:"share"`
	}
)

// NewDocument builds metadata document for the token described by "d" with image at "imageURI".
func NewDocument(d *metadata.Descriptor, imageURI, contentType, creator string) *Document {
	attrs := d.Attributes
	if attrs == nil {
		attrs = []metadata.Attribute{}
	}
	return &Document{
		Name:        d.Name,
		Symbol:      d.Symbol,
		Description: d.Description,
		Image:       imageURI,
		Attributes:  attrs,
		Properties: Properties{
			Files:    []File{{Type: contentType, URI: imageURI}},
			Category: "image",
			Creators: []Creator{{Address: creator, Share: 100}},
		},
	}
}
