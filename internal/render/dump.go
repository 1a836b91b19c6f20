package render

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxelstream/internal/world/mesh"
)

// DumpVersion - версия формата дампа
const DumpVersion = 1

// DumpHeader пишется отдельной JSON-строкой, чтобы его можно было прочитать без gob
type DumpHeader struct {
	Version int       `json:"version"`
	RunID   uuid.UUID `json:"run_id"`
	Seed    int64     `json:"seed"`
	Created time.Time `json:"created"`
	Chunks  int       `json:"chunks"`
}

// MeshRecord - геометрия одного чанка
type MeshRecord struct {
	CX, CZ   int
	Quads    int
	Vertices []mesh.Vertex
	Indices  []uint32
}

// Dump - содержимое файла дампа
type Dump struct {
	Header DumpHeader
	Meshes []MeshRecord
}

// WriteDump пишет дамп в zstd-поток: строка заголовка, затем gob
func WriteDump(w io.Writer, d Dump) error {
	d.Header.Version = DumpVersion
	d.Header.Chunks = len(d.Meshes)

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(d.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&d); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadDump читает дамп, записанный WriteDump
func ReadDump(r io.Reader) (Dump, error) {
	var d Dump
	dec, err := zstd.NewReader(r)
	if err != nil {
		return d, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return d, fmt.Errorf("чтение заголовка: %w", err)
	}
	var hdr DumpHeader
	if err := json.Unmarshal(line, &hdr); err != nil {
		return d, fmt.Errorf("разбор заголовка: %w", err)
	}
	if hdr.Version != DumpVersion {
		return d, fmt.Errorf("неподдерживаемая версия дампа %d", hdr.Version)
	}

	if err := gob.NewDecoder(br).Decode(&d); err != nil {
		return d, fmt.Errorf("gob decode: %w", err)
	}
	return d, nil
}

// WriteDumpFile пишет дамп в файл, создавая каталоги
func WriteDumpFile(path string, d Dump) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteDump(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadDumpFile читает дамп из файла
func ReadDumpFile(path string) (Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dump{}, err
	}
	defer f.Close()
	return ReadDump(f)
}
