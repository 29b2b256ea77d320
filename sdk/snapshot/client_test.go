package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

func TestReadReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   int
		wantErr error
		gotSize int
	}{
		{"exact", surface.Size, nil, 0},
		{"empty", 0, contracts.ErrSizeMismatch, 0},
		{"short", 10, contracts.ErrSizeMismatch, 10},
		{"one short", surface.Size - 1, contracts.ErrSizeMismatch, surface.Size - 1},
		{"trailing byte", surface.Size + 1, contracts.ErrSizeMismatch, surface.Size + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Repeat([]byte{0x01}, tt.reply)
			got, err := readReply(bytes.NewReader(data))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != surface.Size {
					t.Fatalf("len = %d", len(got))
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got != nil {
				t.Fatal("bytes returned alongside an error")
			}
			var sizeErr *contracts.SizeMismatchError
			if !errors.As(err, &sizeErr) || sizeErr.Got != tt.gotSize {
				t.Fatalf("unexpected size error %v", err)
			}
		})
	}
}

func TestApplyDefaultOptions(t *testing.T) {
	o := applyDefaultOptions()
	if o.Address == "" || o.Timeout != DefaultTimeout || o.Logger == nil {
		t.Fatalf("defaults not applied: %+v", o)
	}
	o = applyDefaultOptions(WithAddress("/tmp/x.sock"), WithTimeout(DefaultTimeout*2))
	if o.Address != "/tmp/x.sock" || o.Timeout != DefaultTimeout*2 {
		t.Fatalf("options not applied: %+v", o)
	}
}
