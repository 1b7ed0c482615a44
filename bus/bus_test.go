package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	written []byte
	reply   []byte
	err     error
}

func (f *fakeTx) Tx(w, r []byte) error {
	f.written = append(f.written, w...)
	if f.err != nil {
		return f.err
	}
	copy(r, f.reply)
	return nil
}

func TestTransfer16_MSBFirst(t *testing.T) {
	c := &fakeTx{reply: []byte{0x3A, 0xBC}}

	v, err := Transfer16(c, 0x2840)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x28, 0x40}, c.written)
	assert.Equal(t, uint16(0x3ABC), v)
}

func TestTransfer16_Error(t *testing.T) {
	boom := errors.New("boom")
	c := &fakeTx{err: boom}

	v, err := Transfer16(c, 0)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, v)
}
