package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/starlane/internal/agents"
	"github.com/talgya/starlane/internal/engine"
	"github.com/talgya/starlane/internal/tuning"
)

// SnapshotVersion is the current snapshot format.
const SnapshotVersion = 1

// Header is the first line of a snapshot file, readable without decoding
// the body.
type Header struct {
	Version int       `json:"version"`
	Tick    uint64    `json:"tick"`
	Seed    int64     `json:"seed"`
	Written time.Time `json:"written"`
}

// Snapshot is a portable export of a sector.
type Snapshot struct {
	Header Header          `json:"header"`
	Tuning tuning.Tuning   `json:"tuning"`
	Agents []*agents.Agent `json:"agents"`
	Events []engine.Event  `json:"events,omitempty"`
}

// TakeSnapshot captures sim's current state.
func TakeSnapshot(sim *engine.Simulation, seed int64) Snapshot {
	return Snapshot{
		Header: Header{
			Version: SnapshotVersion,
			Tick:    sim.CurrentTick(),
			Seed:    seed,
			Written: time.Now().UTC(),
		},
		Tuning: sim.Config(),
		Agents: sim.Export(),
		Events: sim.RecentEvents(0),
	}
}

// WriteSnapshot writes snap to path as a zstd-compressed header line
// followed by the JSON body. The file is written to a temp name first and
// renamed into place.
func WriteSnapshot(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := writeSnapshotFile(tmp, snap); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeSnapshotFile(path string, snap Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != SnapshotVersion {
		return snap, fmt.Errorf("snapshot version %d: unsupported", h.Version)
	}

	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	for _, a := range snap.Agents {
		a.Visitors = make(map[agents.AgentID]struct{})
	}
	return snap, nil
}
