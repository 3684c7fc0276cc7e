package cluster

import (
	"encoding/json"
	"fmt"
	"os"
)

// ToFile writes the fitted model as an indented JSON blob.
func (m *Model) ToFile(path string) error {
	if !m.Trained() {
		return ErrNotTrained
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	return nil
}

// FromFile restores a model persisted with ToFile. The generation tag is
// recomputed from the centroids and must agree with the stored one, so a
// corrupted blob is rejected instead of producing wrong assignments.
func FromFile(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var m Model
	if err := json.NewDecoder(file).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}

	if !m.Trained() {
		return nil, ErrNotTrained
	}

	if recomputed := m.fingerprint(); m.Generation != recomputed {
		return nil, fmt.Errorf("model generation %q does not match its centroids (want %q)", m.Generation, recomputed)
	}

	return &m, nil
}
