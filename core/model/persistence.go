package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SaveModel serializes m to filename with encoding/gob. An existing file is
// truncated. The file is always closed; a close failure is reported when
// encoding itself succeeded.
//
// The artifact is only readable by LoadModel into the same Go type.
//
// Example:
//
//	if err := model.SaveModel(reg, "model_after_training"); err != nil {
//	    log.Fatal(err)
//	}
func SaveModel(m interface{}, filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	return SaveModelToWriter(m, file)
}

// SaveModelToWriter serializes m to w with encoding/gob.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModel decodes a gob artifact written by SaveModel into m, which must
// be a pointer to the same type that was saved. gob leaves fields that were
// zero when saved untouched, so model types implement gob.GobDecoder to
// replace their whole state on load.
//
// Example:
//
//	reg := linear.NewLinearRegression()
//	if err := model.LoadModel(reg, "model_after_training"); err != nil {
//	    log.Fatal(err)
//	}
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadModelFromReader(m, file)
}

// LoadModelFromReader decodes a gob artifact from r into m.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
