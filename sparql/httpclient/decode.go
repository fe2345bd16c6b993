package httpclient

import (
	"encoding/json"
	"fmt"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/sparql"
)

type jsonTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

func (t jsonTerm) term() (sparql.Term, error) {
	switch t.Type {
	case "uri":
		return sparql.IRI(t.Value), nil
	case "bnode":
		return sparql.Blank(t.Value), nil
	case "literal", "typed-literal":
		switch {
		case t.Lang != "":
			return sparql.LangLiteral(t.Value, t.Lang), nil
		case t.Datatype != "":
			return sparql.TypedLiteral(t.Value, t.Datatype), nil
		}
		return sparql.Literal(t.Value), nil
	default:
		return sparql.Term{}, fmt.Errorf("unknown term type %q", t.Type)
	}
}

func malformed(err error) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %v", sparql.ErrMalformedResult, err),
		"httpclient", "decodeBindings", "decode results")
}

// decodeBindings walks a results document token by token and hands each
// entry of results.bindings to fn without buffering the array.
func decodeBindings(dec *json.Decoder, fn func(sparql.Row) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return malformed(err)
	}

	found := false
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return malformed(err)
		}
		if key != "results" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return malformed(err)
			}
			continue
		}

		found = true
		if err := decodeResults(dec, fn); err != nil {
			return err
		}
	}
	if !found {
		return malformed(fmt.Errorf("missing results"))
	}
	return nil
}

func decodeResults(dec *json.Decoder, fn func(sparql.Row) error) error {
	if err := expectDelim(dec, '{'); err != nil {
		return malformed(err)
	}
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return malformed(err)
		}
		if key != "bindings" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return malformed(err)
			}
			continue
		}

		if err := expectDelim(dec, '['); err != nil {
			return malformed(err)
		}
		for dec.More() {
			var raw map[string]jsonTerm
			if err := dec.Decode(&raw); err != nil {
				return malformed(err)
			}
			row := make(sparql.Row, len(raw))
			for name, jt := range raw {
				t, err := jt.term()
				if err != nil {
					return malformed(err)
				}
				row[name] = t
			}
			if err := fn(row); err != nil {
				return err
			}
		}
		if err := expectDelim(dec, ']'); err != nil {
			return malformed(err)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return malformed(err)
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}
