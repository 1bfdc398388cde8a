package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestGetNativeEngine(t *testing.T) {
	require := require.New(t)

	var probe uint16 = 0x0102
	raw := (*[2]byte)(unsafe.Pointer(&probe))

	switch raw[0] {
	case 0x01:
		require.Equal(binary.BigEndian, GetNativeEngine())
	case 0x02:
		require.Equal(binary.LittleEndian, GetNativeEngine())
	default:
		require.Failf("unexpected byte value", "got: %v", raw[0])
	}
}

func TestIsNative(t *testing.T) {
	require.True(t, IsNative(GetNativeEngine()))

	if GetNativeEngine() == binary.LittleEndian {
		require.False(t, IsNative(GetBigEndianEngine()))
	} else {
		require.False(t, IsNative(GetLittleEndianEngine()))
	}
}

func TestEngineRoundTrip(t *testing.T) {
	engines := map[string]EndianEngine{
		"little": GetLittleEndianEngine(),
		"big":    GetBigEndianEngine(),
		"native": GetNativeEngine(),
	}

	for name, engine := range engines {
		t.Run(name, func(t *testing.T) {
			buf := engine.AppendUint64(nil, 0x0102030405060708)
			require.Len(t, buf, 8)
			require.Equal(t, uint64(0x0102030405060708), engine.Uint64(buf))
		})
	}

	require.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		GetLittleEndianEngine().AppendUint64(nil, 0x0102030405060708))
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		GetBigEndianEngine().AppendUint64(nil, 0x0102030405060708))
}
