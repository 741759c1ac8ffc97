package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Deployment is one published set of contract addresses.
type Deployment struct {
	CommitID  string         `yaml:"commit_id"`
	IsLatest  bool           `yaml:"is_latest"`
	Contracts []ContractInfo `yaml:"contracts"`
}

// ContractInfo describes one deployed contract. PublicKey and Salt are only
// set for contracts that accept encrypted messages.
type ContractInfo struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	PublicKey string `yaml:"public_key,omitempty"`
	Salt      string `yaml:"salt,omitempty"`
}

type deploymentsFile struct {
	Deployments []Deployment `yaml:"deployments"`
}

// FileDirectory serves contract lookups from a YAML deployments file.
type FileDirectory struct {
	deployment Deployment
}

// LoadDirectory reads a deployments file.
func LoadDirectory(path string) (*FileDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deployments: %w", err)
	}
	return ParseDirectory(data)
}

// ParseDirectory decodes deployments YAML and selects the deployment marked
// is_latest, or the only one when there is a single deployment.
func ParseDirectory(data []byte) (*FileDirectory, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f deploymentsFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse deployments: %w", err)
	}

	d, err := latest(f.Deployments)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(d.Contracts))
	for _, c := range d.Contracts {
		if c.Name == "" || c.Address == "" {
			return nil, fmt.Errorf("deployment %s: contract entry needs name and address", d.CommitID)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("deployment %s: contract %q listed twice", d.CommitID, c.Name)
		}
		seen[c.Name] = true
	}
	return &FileDirectory{deployment: d}, nil
}

func latest(ds []Deployment) (Deployment, error) {
	switch len(ds) {
	case 0:
		return Deployment{}, errors.New("deployments file lists no deployments")
	case 1:
		return ds[0], nil
	}
	var found *Deployment
	for i := range ds {
		if !ds[i].IsLatest {
			continue
		}
		if found != nil {
			return Deployment{}, fmt.Errorf("deployments %s and %s are both marked latest", found.CommitID, ds[i].CommitID)
		}
		found = &ds[i]
	}
	if found == nil {
		return Deployment{}, errors.New("no deployment is marked latest")
	}
	return *found, nil
}

// CommitID returns the commit of the selected deployment.
func (d *FileDirectory) CommitID() string {
	return d.deployment.CommitID
}

func (d *FileDirectory) lookup(name string) (ContractInfo, error) {
	for _, c := range d.deployment.Contracts {
		if c.Name == name {
			return c, nil
		}
	}
	return ContractInfo{}, fmt.Errorf("%w: %s", ErrContractNotFound, name)
}

// Address implements Directory.
func (d *FileDirectory) Address(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := d.lookup(name)
	if err != nil {
		return "", err
	}
	return c.Address, nil
}

// EncryptionInfo implements Directory.
func (d *FileDirectory) EncryptionInfo(ctx context.Context, name string) (EncryptionInfo, error) {
	if err := ctx.Err(); err != nil {
		return EncryptionInfo{}, err
	}
	c, err := d.lookup(name)
	if err != nil {
		return EncryptionInfo{}, err
	}
	if c.PublicKey == "" {
		return EncryptionInfo{}, fmt.Errorf("%w: %s", ErrNoEncryptionKey, name)
	}
	return EncryptionInfo{PublicKey: c.PublicKey, Salt: c.Salt}, nil
}
