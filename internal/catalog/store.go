package catalog

import (
	"errors"
	"log"
	"path"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/resource"
)

// Store owns the current Snapshot and knows how to rebuild it.
type Store struct {
	loader resource.Loader
	root   string

	reloadMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// Load reads the four documents under root and returns a ready Store.
// Any missing, empty or unreadable document fails with a TECHNICAL error.
func Load(loader resource.Loader, root string) (*Store, error) {
	s := &Store{loader: loader, root: root}

	snap, err := s.read()
	if err != nil {
		return nil, err
	}

	s.current.Store(snap)
	logSummary("loaded", root, snap)

	return s, nil
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload re-reads all documents and swaps the snapshot atomically.
// Concurrent reloads are serialized. On failure the previous snapshot stays.
func (s *Store) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := s.read()
	if err != nil {
		return err
	}

	s.current.Store(snap)
	logSummary("reloaded", s.root, snap)

	return nil
}

func (s *Store) read() (*Snapshot, error) {
	var (
		cm cartridgeMasterDoc
		sm schemaMasterDoc
		fm flowMappingDoc
		tf flowMasterDoc
	)

	if err := s.decode(CartridgeMasterFile, &cm, func() bool { return len(cm.Providers) == 0 }); err != nil {
		return nil, err
	}

	if err := s.decode(SchemaMasterFile, &sm, func() bool { return len(sm.Cartridges) == 0 }); err != nil {
		return nil, err
	}

	if err := s.decode(FlowMappingFile, &fm, func() bool { return len(fm.CartridgeFlows) == 0 }); err != nil {
		return nil, err
	}

	if err := s.decode(FlowMasterFile, &tf, func() bool { return len(tf.Flows) == 0 }); err != nil {
		return nil, err
	}

	return NewSnapshot(cm.Providers, sm.Cartridges, fm.CartridgeFlows, tf.Flows), nil
}

func (s *Store) decode(name string, out any, empty func() bool) error {
	p := path.Join(s.root, name)

	if !s.loader.Exists(p) {
		return diagnostic.Technical(diagnostic.CodeConfigNotFound, diagnostic.StepConfig, "",
			"configuration file not found: %s", p)
	}

	data, err := s.loader.Read(p)
	if errors.Is(err, resource.ErrNotFound) {
		return diagnostic.Technical(diagnostic.CodeConfigNotFound, diagnostic.StepConfig, "",
			"configuration file not found: %s", p)
	}

	if err != nil {
		return diagnostic.Technical(diagnostic.CodeConfigReadFailed, diagnostic.StepConfig, "",
			"failed to read configuration file: %s", p).Wrap(err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return diagnostic.Technical(diagnostic.CodeConfigReadFailed, diagnostic.StepConfig, "",
			"failed to parse configuration file: %s", p).Wrap(err)
	}

	if empty() {
		return diagnostic.Technical(diagnostic.CodeConfigEmpty, diagnostic.StepConfig, "",
			"empty configuration file: %s", p)
	}

	return nil
}

func logSummary(verb, root string, snap *Snapshot) {
	providers, cartridges, flows, flowDefs := snap.Counts()
	log.Printf("catalog %s from %s: %d providers, %d cartridge schemas, %d cartridge flows, %d transformation flows",
		verb, root, providers, cartridges, flows, flowDefs)
}
