package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameBytes(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		expect []byte
	}{
		{"i2c write", Frame{ID: 1, Page: PageI2C, Command: I2CWrite, Data: []byte{0x4f, 0xde}},
			[]byte{0x08, 0x00, 0x01, 0x00, 0x05, 0x20, 0x4f, 0xde}},
		{"i2c read", Frame{ID: 1, Page: PageI2C, Command: I2CRead, Data: []byte{0x4c, 0x01}},
			[]byte{0x08, 0x00, 0x01, 0x00, 0x05, 0x30, 0x4c, 0x01}},
		{"i2c readwrite", Frame{ID: 1, Page: PageI2C, Command: I2CReadWrite, Data: []byte{0x32, 0xfe, 0x02}},
			[]byte{0x09, 0x00, 0x01, 0x00, 0x05, 0x40, 0x32, 0xfe, 0x02}},
		{"gpio set pin 1 low", Frame{Page: PageGPIO, Command: 0x01, Data: []byte{0x00}},
			[]byte{0x07, 0x00, 0x00, 0x00, 0x06, 0x01, 0x00}},
		{"led set magenta", Frame{Page: PageLED, Command: LEDSetColor, Data: []byte{0xff, 0x00, 0xff}},
			[]byte{0x09, 0x00, 0x00, 0x00, 0x08, 0x10, 0xff, 0x00, 0xff}},
		{"empty success response", Frame{ID: 1, Page: PageI2C, Command: I2CWrite},
			[]byte{0x06, 0x00, 0x01, 0x00, 0x05, 0x20}},
		{"error response", Frame{ID: 2, Bus: StatusErr, Page: PageLED, Command: LEDSetColor, Data: []byte{ErrCodeInvalid}},
			[]byte{0x07, 0x00, 0x02, 0xff, 0x08, 0x10, 0x11}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.frame.Bytes())
			require.Equal(t, len(tc.expect), tc.frame.TotalLen())
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, len(tc.expect), n)
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	frames := []Frame{
		{ID: 1, Page: PageI2C, Command: I2CWrite, Data: []byte{0x4f, 0xde}},
		{ID: 0xff, Page: PageGPIO, Command: 0x1d, Data: []byte{0x01}},
		{ID: 7, Page: PageLED, Command: LEDSetColor, Data: []byte{1, 2, 3}},
		{ID: 9, Bus: StatusErr, Page: 0x07, Command: 0x42, Data: []byte{ErrCodeInvalid}},
		{ID: 3, Page: PageI2C, Command: I2CRead},
	}

	var dec Decoder
	for _, f := range frames {
		var got *Frame
		for _, b := range f.Bytes() {
			frame, err := dec.Feed(b)
			require.NoError(t, err)
			if frame != nil {
				require.Nil(t, got, "more than one frame decoded")
				got = frame
			}
		}
		require.NotNil(t, got)
		require.Equal(t, f, *got)
		require.Equal(t, HeaderLen+len(got.Data), got.TotalLen())
		require.False(t, dec.Receiving())
	}
}
