package keystore

import (
	"github.com/pkg/errors"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"
)

const keyFileExt = ".key.json"

// DataDir lays out the node's files under prefix, one directory per
// network. The auction database and the key files live side by side.
type DataDir struct {
	prefix string
	mtx    sync.Mutex
}

func NewDataDir(prefix string) (*DataDir, error) {
	res := &DataDir{
		prefix: prefix,
	}
	if err := res.createPrefix(); err != nil {
		return nil, errors.Wrap(err, "error creating prefix")
	}
	return res, nil
}

func (d *DataDir) EnsureNetwork(networkName string) error {
	if err := d.ensureDir(d.NetworkPath(networkName)); err != nil {
		return errors.Wrap(err, "error ensuring network directory")
	}
	return nil
}

func (d *DataDir) NetworkPath(networkName string) string {
	return path.Join(d.prefix, networkName)
}

// ListKeys returns the names of the key files stored for a network.
func (d *DataDir) ListKeys(networkName string) ([]string, error) {
	files, err := ioutil.ReadDir(d.NetworkPath(networkName))
	if err != nil {
		return nil, errors.Wrap(err, "error listing network directory")
	}

	out := make([]string, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), keyFileExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(f.Name(), keyFileExt))
	}
	return out, nil
}

func (d *DataDir) keyPath(networkName, name string) string {
	return path.Join(d.prefix, networkName, name+keyFileExt)
}

func (d *DataDir) ensureDir(dirPath string) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	stat, err := os.Stat(dirPath)
	if err == nil {
		if !stat.IsDir() {
			return errors.Errorf("%s is not a directory", dirPath)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrap(err, "directory read error")
	}
	if err := os.MkdirAll(dirPath, 0o700); err != nil {
		return errors.Wrap(err, "error creating directory")
	}
	return nil
}

func (d *DataDir) createPrefix() error {
	if strings.HasPrefix(d.prefix, "~") {
		hd, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "error reading home directory")
		}
		d.prefix = strings.Replace(d.prefix, "~", hd, 1)
	}

	if err := d.ensureDir(d.prefix); err != nil {
		return errors.Wrap(err, "error opening prefix")
	}
	return nil
}
