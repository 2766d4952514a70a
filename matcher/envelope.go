package matcher

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/viant/domindex/index"
	"github.com/viant/domindex/index/kdtree"
	"github.com/viant/domindex/snapshot"
)

const (
	envelopeMagic   = "DOMS"
	envelopeVersion = 1
	envelopeHeader  = len(envelopeMagic) + 4 + 8
)

// encodeSnapshot stores: magic, version(uint32), seq(int64), then the tree's
// binary encoding. seq is the last change-log entry the tree reflects.
func encodeSnapshot(seq int64, tree *kdtree.Tree) ([]byte, error) {
	body, err := tree.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, envelopeHeader+len(body))
	out = append(out, envelopeMagic...)
	out = binary.LittleEndian.AppendUint32(out, envelopeVersion)
	out = binary.LittleEndian.AppendUint64(out, uint64(seq))
	return append(out, body...), nil
}

func decodeSnapshot(data []byte) (int64, *kdtree.Tree, error) {
	if len(data) < envelopeHeader || string(data[:len(envelopeMagic)]) != envelopeMagic {
		return 0, nil, fmt.Errorf("matcher: invalid snapshot: %w", index.ErrMalformedInput)
	}
	off := len(envelopeMagic)
	if v := binary.LittleEndian.Uint32(data[off:]); v != envelopeVersion {
		return 0, nil, fmt.Errorf("matcher: unsupported snapshot version %d: %w", v, index.ErrMalformedInput)
	}
	seq := int64(binary.LittleEndian.Uint64(data[off+4:]))
	if seq < 0 {
		return 0, nil, fmt.Errorf("matcher: negative snapshot seq %d: %w", seq, index.ErrMalformedInput)
	}
	tree := kdtree.New()
	if err := tree.UnmarshalBinary(data[envelopeHeader:]); err != nil {
		return 0, nil, err
	}
	return seq, tree, nil
}

// ReadSnapshot loads the tree persisted under name together with the
// change-log seq it reflects.
func ReadSnapshot(ctx context.Context, snapshots snapshot.Store, name string) (*kdtree.Tree, int64, error) {
	data, err := snapshots.Load(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	seq, tree, err := decodeSnapshot(data)
	if err != nil {
		return nil, 0, err
	}
	return tree, seq, nil
}
