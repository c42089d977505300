package cli_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/cli"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestSimulate_Golden(t *testing.T) {
	scripts := []string{"basic", "repeating"}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, name := range scripts {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, "simulate", filepath.Join("testdata", "scripts", name+".yaml"))
			require.NoError(t, err)

			g.Assert(t, name, []byte(out))
		})
	}
}

func TestSimulate_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "simulate", filepath.Join("testdata", "scripts", "basic.yaml"))
	require.NoError(t, err)

	var records []cli.StepRecord

	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 9)

	assert.Equal(t, "advance 2s", records[3].Step)
	require.Len(t, records[3].Outbound, 1)
	assert.Equal(t, int64(100), records[3].Outbound[0].ChatID)
	assert.Equal(t, "test", records[3].Outbound[0].Commands[0].Text)
}

func TestSimulate_Errors(t *testing.T) {
	_, err := execute(t, "simulate", filepath.Join("testdata", "scripts", "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "--format", "xml", "simulate", filepath.Join("testdata", "scripts", "basic.yaml"))
	assert.ErrorContains(t, err, "invalid format")
}

func TestParse(t *testing.T) {
	out, err := execute(t, "parse", "--now", "2025-03-01T09:00:00Z", "at 18.30 call mom")
	require.NoError(t, err)

	assert.Equal(t, "kind:  one_time\n"+
		"time:  2025-03-01T15:30:00Z\n"+
		"local: 2025-03-01 18:30:00\n"+
		"text:  \"call mom\"\n"+
		"reply: I'll remind you today at 18:30\n", out)
}

func TestParse_RepeatingJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "parse", "--now", "2025-03-01T09:00:00Z", "rep 2-3 10.00 7d water plants")
	require.NoError(t, err)

	var result cli.ParseResult

	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, cli.ParseResult{
		Kind:            "repeating",
		Time:            "2025-03-02T07:00:00Z",
		Local:           "2025-03-02 10:00:00",
		IntervalSeconds: 7 * 24 * 3600,
		Text:            "water plants",
		Confirmation:    "I'll remind you tomorrow at 10:00",
	}, result)
}

func TestParse_NoMatch(t *testing.T) {
	_, err := execute(t, "parse", "--now", "2025-03-01T09:00:00Z", "whenever")
	assert.Error(t, err)

	_, err = execute(t, "parse", "--now", "yesterday", "1h tea")
	assert.ErrorContains(t, err, "invalid --now")
}
