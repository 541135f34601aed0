package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavFormat = errors.New("unsupported WAV sample format")
	ErrMissingDataChunk     = errors.New("WAV file has no data chunk")
	ErrUnsupportedEncoding  = errors.New("WAV writer supports pcm16 and float only")
)
