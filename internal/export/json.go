package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/pixelcanvas/internal/scenario"
	"github.com/san-kum/pixelcanvas/internal/storage"
)

type Frame struct {
	AtMS       float64 `json:"at_ms"`
	Program    string  `json:"program"`
	Pixels     int     `json:"pixels"`
	Waiting    int     `json:"waiting"`
	Growing    int     `json:"growing"`
	Shimmering int     `json:"shimmering"`
	Shrinking  int     `json:"shrinking"`
	Idle       int     `json:"idle"`
	MeanSize   float64 `json:"mean_size"`
}

type ExportData struct {
	Run    storage.RunMetadata `json:"run"`
	Steps  int                 `json:"steps"`
	Frames []Frame             `json:"frames"`
}

func newExportData(meta *storage.RunMetadata, frames []scenario.FrameStat) ExportData {
	data := ExportData{
		Run:    *meta,
		Steps:  len(frames),
		Frames: make([]Frame, len(frames)),
	}
	for i, f := range frames {
		data.Frames[i] = Frame{
			AtMS:       f.At.Seconds() * 1000,
			Program:    f.Program,
			Pixels:     f.Pixels,
			Waiting:    f.Waiting,
			Growing:    f.Growing,
			Shimmering: f.Shimmering,
			Shrinking:  f.Shrinking,
			Idle:       f.Idle,
			MeanSize:   f.MeanSize,
		}
	}
	return data
}

// WriteJSON encodes a run and its frames as indented JSON.
func WriteJSON(w io.Writer, meta *storage.RunMetadata, frames []scenario.FrameStat) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, frames))
}

func ExportJSON(path string, meta *storage.RunMetadata, frames []scenario.FrameStat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, frames)
}

func ExportJSONStdout(meta *storage.RunMetadata, frames []scenario.FrameStat) error {
	return WriteJSON(os.Stdout, meta, frames)
}
