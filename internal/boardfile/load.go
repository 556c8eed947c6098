package boardfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/hexboard/internal/board"
)

func decode(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadInfo reads a board-info document.
func LoadInfo(path string) (*Info, error) {
	var info Info
	if err := decode(path, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LoadPlacements reads a placements document.
func LoadPlacements(path string) (board.PlacementMap, error) {
	var doc PlacementDoc
	if err := decode(path, &doc); err != nil {
		return nil, err
	}
	return doc.Lookup()
}

// Load reads the board info at infoPath and builds the board. Positions
// come from placementsPath, or are derived from the tile centres when it is
// empty.
func Load(infoPath, placementsPath string) (*board.Board, error) {
	info, err := LoadInfo(infoPath)
	if err != nil {
		return nil, err
	}

	var placements board.PlacementLookup
	if placementsPath == "" {
		placements = Derive(info)
	} else {
		m, err := LoadPlacements(placementsPath)
		if err != nil {
			return nil, err
		}
		placements = m
	}

	b, err := board.Build(info.Records(), placements)
	if err != nil {
		return nil, fmt.Errorf("failed to build board from %s: %w", infoPath, err)
	}

	log.WithFields(log.Fields{
		"path":  infoPath,
		"rows":  info.Rows,
		"cols":  info.Cols,
		"tiles": len(info.Tiles),
		"cells": b.Len(),
	}).Info("Board loaded")
	return b, nil
}
