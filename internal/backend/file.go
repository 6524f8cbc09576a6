package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PlanExt is appended to the model save path to name the plan file.
const PlanExt = ".plan"

// File writes each request as indented JSON next to the model file.
type File struct{}

// Path returns the file a request is written to.
func (File) Path(req *Request) string {
	return req.Config.SavePath + PlanExt
}

func (f File) Build(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode request")
	}

	path := f.Path(req)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create plan directory")
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
