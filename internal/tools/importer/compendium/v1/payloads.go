package compendiumimporter

import "encoding/json"

type sourcePayload struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Enabled *bool  `json:"enabled"`
}

type baseItemsPayload struct {
	BaseItems []json.RawMessage `json:"baseitem"`
}

type magicVariantsPayload struct {
	Variants []json.RawMessage `json:"magicvariant"`
}

type itemsPayload struct {
	Items []json.RawMessage `json:"item"`
}

// itemHeader is the slice of an item blob the importer indexes directly.
type itemHeader struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
	Rarity string `json:"rarity"`
}

type sourcePayloads struct {
	Source    *sourcePayload
	BaseItems *baseItemsPayload
	Variants  *magicVariantsPayload
	Items     *itemsPayload
}
