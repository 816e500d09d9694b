package wiz

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	flock "github.com/theckman/go-flock"
)

// exportDefinition writes d to dir as "{identifier}[-{version}].json",
// pretty-printed with 4-space indent in the canonical key order (spec.md
// §6). Writing goes through a lockfile + temp-file + rename sequence,
// grounded in the teacher's own "pseudo-atomic" write discipline
// (txn_writer.go's SafeWriter) and using the teacher's
// github.com/theckman/go-flock dependency to guard against two resolver
// processes exporting the same definition concurrently.
func exportDefinition(dir string, d Definition, overwrite bool) error {
	name := d.Identifier
	if !d.Version.IsUnknown() {
		name += "-" + d.Version.String()
	}
	target := filepath.Join(dir, name+".json")

	lock := flock.NewFlock(target + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrapf(err, "locking export target %s", target)
	}
	defer lock.Unlock()

	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return FileExists(target)
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "checking export target %s", target)
		}
	}

	payload, err := json.MarshalIndent(d.toRaw(), "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding definition")
	}

	tmp, err := os.CreateTemp(dir, name+".json.tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temporary export file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(err, "writing temporary export file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "closing temporary export file")
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "renaming into place %s", target)
	}

	return nil
}
