package cmd

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args against a fresh flag state.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setupEnv(t *testing.T) {
	t.Setenv("KHATA_STORAGE", "bolt")
	t.Setenv("KHATA_DB_PATH", filepath.Join(t.TempDir(), "khata.db"))
	t.Setenv("KHATA_FLUSH_DELAY", "1h")
	for _, key := range []string{"GCS_BUCKET", "BQ_PROJECT", "NOTION_TOKEN", "NOTION_DB_ID", "GEMINI_API_KEY", "GOOGLE_API_KEY", "GOOGLE_GENAI_USE_VERTEXAI", "GOOGLE_CLOUD_PROJECT", "KHATA_SHOP_PROFILE"} {
		t.Setenv(key, "")
	}
}

var idPattern = regexp.MustCompile(`ID:\s+(\S+)`)

func TestLedgerCommands(t *testing.T) {
	setupEnv(t)

	output, err := run(t, "add", "--date", "2024-03-01", "--customer", "Ramesh", "--book", "NCERT Physics XI", "--total", "450", "--paid", "200", "--method", "UPI")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Status:   Partial")
	m := idPattern.FindStringSubmatch(output)
	require.Len(t, m, 2)
	id := m[1]

	output, err = run(t, "add", "--date", "2024-03-02", "--customer", "Suresh", "--book", "RD Sharma", "--total", "1200")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Status:   Unpaid")

	output, err = run(t, "list", "--search", "ncert")
	require.NoError(t, err)
	assert.Contains(t, output, "Ramesh")
	assert.NotContains(t, output, "Suresh")

	output, err = run(t, "debtors")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)Suresh.*Ramesh`, output)

	output, err = run(t, "edit", id, "--paid", "450")
	require.NoError(t, err, output)
	assert.Contains(t, output, "Status:   Paid")
	assert.Contains(t, output, "Book:     NCERT Physics XI")

	output, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, output, "Total sales:     ₹1,650")
	assert.Contains(t, output, "Total pending:   ₹1,200")

	output, err = run(t, "statement", "Ramesh")
	require.NoError(t, err)
	assert.Contains(t, output, "Party: RAMESH")

	output, err = run(t, "delete", id)
	require.NoError(t, err, output)

	_, err = run(t, "delete", id)
	assert.Error(t, err)

	output, err = run(t, "customer", "Ramesh")
	require.NoError(t, err)
	assert.Contains(t, output, "No transactions found.")
}

func TestAdd_RejectsInvalidInput(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "add", "--customer", "Ramesh", "--book", "Atlas", "--total", "-5")
	assert.Error(t, err)

	_, err = run(t, "add", "--customer", "Ramesh", "--book", "Atlas", "--total", "100", "--method", "Cheque")
	assert.Error(t, err)

	output, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, output, "No transactions found.")
}

func TestSessionCommands(t *testing.T) {
	setupEnv(t)

	output, err := run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, "Not signed in.")

	output, err = run(t, "login", "Vikas Jain")
	require.NoError(t, err)
	assert.Contains(t, output, "Vikas Jain <vikas.jain@shop.local>")

	output, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, "Vikas Jain")

	_, err = run(t, "logout")
	require.NoError(t, err)
	output, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, "Not signed in.")
}

func TestExportCSVToStdout(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "add", "--date", "2024-03-01", "--customer", "Asha", "--book", "Gita", "--total", "100", "--paid", "100")
	require.NoError(t, err)

	output, err := run(t, "export", "csv", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, output, "Asha")
}

func TestTargetsNeedConfiguration(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "backup")
	assert.ErrorContains(t, err, "GCS_BUCKET")

	_, err = run(t, "sync", "notion")
	assert.ErrorContains(t, err, "NOTION_TOKEN")

	_, err = run(t, "insight")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
