package feature

import (
	"encoding/json"
	"fmt"
	"os"
)

// ToFile writes the vocabulary as an indented JSON blob.
func (v *Vocabulary) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return nil
}

// FromFile restores a vocabulary persisted with ToFile. The version tag is
// recomputed from the term list and must agree with the stored one, so a
// hand-edited blob cannot quietly change encoding semantics.
func FromFile(path string) (*Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var v Vocabulary
	if err := json.NewDecoder(file).Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding vocabulary: %w", err)
	}

	if recomputed := termsVersion(v.Terms); v.Version != recomputed {
		return nil, fmt.Errorf("vocabulary version %q does not match its terms (want %q)", v.Version, recomputed)
	}

	v.buildIndex()
	return &v, nil
}
