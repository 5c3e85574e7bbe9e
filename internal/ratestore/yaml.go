package ratestore

import (
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/estimator/internal/pricing"
)

// ReadYAML decodes a rate configuration file. Unknown top-level fields are
// rejected so typos surface instead of silently dropping a category.
func ReadYAML(r io.Reader) (pricing.RateConfiguration, error) {
	rc := pricing.NewRateConfiguration()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil {
		if errors.Is(err, io.EOF) {
			return rc, nil
		}
		return pricing.RateConfiguration{}, eris.Wrap(err, "ratestore: decode yaml")
	}
	if err := CheckKeys(rc); err != nil {
		return pricing.RateConfiguration{}, err
	}
	if err := CheckValues(rc); err != nil {
		return pricing.RateConfiguration{}, err
	}
	return rc, nil
}

// WriteYAML encodes rc with two-space indentation.
func WriteYAML(w io.Writer, rc pricing.RateConfiguration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rc); err != nil {
		return eris.Wrap(err, "ratestore: encode yaml")
	}
	return eris.Wrap(enc.Close(), "ratestore: flush yaml")
}
