package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Frames []Frame     `json:"frames"`
}

// ExportJSON writes a run and its frames as indented JSON to w.
func ExportJSON(w io.Writer, meta RunMetadata, frames []Frame) error {
	meta.Frames = len(frames)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Frames: frames})
}

func ExportJSONFile(path string, meta RunMetadata, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := ExportJSON(file, meta, frames); err != nil {
		return err
	}
	return file.Close()
}
