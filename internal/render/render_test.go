package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breeze-rmm/svcctl/internal/svcquery"
)

var records = []svcquery.ServiceRecord{
	{Name: "Spooler", DisplayName: "Print Spooler", StateCode: svcquery.StateRunning, ProcessID: 1234},
	{Name: "W32Time", DisplayName: "Windows Time", StateCode: svcquery.StateStopped, ProcessID: 0},
}

func TestServiceTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ServiceTable(&buf, records, Options{NoColor: true}))

	out := buf.String()
	for _, want := range []string{"Display Name", "Spooler", "Print Spooler", "RUNNING", "1234", "W32Time", "STOPPED"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "Process")
}

func TestServiceTableRowOrderFollowsRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ServiceTable(&buf, records, Options{NoColor: true}))

	out := buf.String()
	assert.Less(t, strings.Index(out, "Spooler"), strings.Index(out, "W32Time"))
}

func TestServiceTableWide(t *testing.T) {
	var resolved []int
	opts := Options{
		Wide:    true,
		NoColor: true,
		ProcessName: func(pid int) string {
			resolved = append(resolved, pid)
			return "spoolsv.exe"
		},
	}

	var buf bytes.Buffer
	require.NoError(t, ServiceTable(&buf, records, opts))

	assert.Contains(t, buf.String(), "Process")
	assert.Contains(t, buf.String(), "spoolsv.exe")
	assert.Equal(t, []int{1234}, resolved, "PID 0 is never resolved")
}

func TestServiceTableUnknownStateWritesNothing(t *testing.T) {
	bad := append([]svcquery.ServiceRecord{}, records...)
	bad = append(bad, svcquery.ServiceRecord{Name: "Odd", DisplayName: "Odd", StateCode: 8})

	var buf bytes.Buffer
	err := ServiceTable(&buf, bad, Options{NoColor: true})
	require.ErrorIs(t, err, svcquery.ErrUnknownStateCode)
	assert.Zero(t, buf.Len())
}

func TestServiceTableWideEastAsianNames(t *testing.T) {
	var buf bytes.Buffer
	recs := []svcquery.ServiceRecord{{Name: "Spooler", DisplayName: "印刷スプーラー", StateCode: svcquery.StatePaused, ProcessID: 1}}
	require.NoError(t, ServiceTable(&buf, recs, Options{NoColor: true}))
	assert.Contains(t, buf.String(), "印刷スプーラー")
	assert.Contains(t, buf.String(), "PAUSED")
}
