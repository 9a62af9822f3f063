package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// maxLineSize bounds one serialized trajectory.
const maxLineSize = 4 << 20

// LoadJSONL reads trajectories from a JSONL file, one per line. Blank lines
// are skipped.
func LoadJSONL(path string) ([]*models.Trajectory, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, eris.Wrap(err, "getting absolute path")
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, eris.Wrapf(err, "opening %s", absPath)
	}
	defer f.Close()

	trajs, err := ReadJSONL(f)
	if err != nil {
		return nil, eris.Wrapf(err, "reading %s", absPath)
	}
	return trajs, nil
}

// ReadJSONL decodes trajectories from r.
func ReadJSONL(r io.Reader) ([]*models.Trajectory, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var trajs []*models.Trajectory
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		t := &models.Trajectory{}
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, eris.Wrapf(err, "line %d", line)
		}
		t.StampTiming()
		trajs = append(trajs, t)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scanning")
	}
	return trajs, nil
}

// WriteJSONL encodes trajectories to w, one per line.
func WriteJSONL(w io.Writer, trajs []*models.Trajectory) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, t := range trajs {
		if err := enc.Encode(t); err != nil {
			return eris.Wrapf(err, "encoding trajectory %s", t.TrajectoryID)
		}
	}
	return eris.Wrap(bw.Flush(), "flushing")
}
