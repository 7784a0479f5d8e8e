package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/jobs"
)

func TestParseTargets(t *testing.T) {
	tests := []struct {
		in      string
		want    []jobs.ExportTarget
		wantErr bool
	}{
		{in: "gcs_backup", want: []jobs.ExportTarget{jobs.TargetGCSBackup}},
		{in: " bigquery , notion ", want: []jobs.ExportTarget{jobs.TargetBigQuery, jobs.TargetNotion}},
		{in: "bigquery,,", want: []jobs.ExportTarget{jobs.TargetBigQuery}},
		{in: "", wantErr: true},
		{in: "ftp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTargets(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
