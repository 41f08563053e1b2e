package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveTargetBytes(t *testing.T) {
	tests := []struct {
		name    string
		size    string
		want    int64
		wantErr bool
	}{
		{name: "binary units", size: "4GiB", want: 4 << 30},
		{name: "decimal units", size: "500MB", want: 500 * 1000 * 1000},
		{name: "plain bytes", size: "1024", want: 1024},
		{name: "garbage", size: "a lot", wantErr: true},
		{name: "empty", size: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Download: DownloadCfg{TargetSize: tt.size}}

			got, err := cfg.ArchiveTargetBytes()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
