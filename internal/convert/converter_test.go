package convert

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openstack-archive/rst2bash/internal/config"
	"github.com/openstack-archive/rst2bash/internal/journal"
)

const sampleDoc = `Install the compute service.

.. only:: ubuntu or debian

.. path /etc/nova/nova.conf
.. code-block:: ini

   [DEFAULT]
   transport_url=rabbit://openstack

.. end

.. endonly

.. code-block:: console

   # apt install nova-api

.. end
`

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	srcDir := t.TempDir()
	outRoot := t.TempDir()
	return &config.Config{
		Source: config.SourceConfig{Dir: srcDir},
		Output: map[string]string{
			"ubuntu": filepath.Join(outRoot, "ubuntu"),
			"debian": filepath.Join(outRoot, "debian"),
		},
		DefaultDistros: []string{"ubuntu"},
	}
}

func TestRunFiles_WritesPerDistroScripts(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.Source.Dir, "compute.rst", sampleDoc)

	summary, err := New(cfg).RunFiles(context.Background(), []string{"compute.rst"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 0, summary.Failed)
	require.Equal(t, 2, summary.Results[0].Units)

	ubuntu, err := os.ReadFile(filepath.Join(cfg.Output["ubuntu"], "compute.sh"))
	require.NoError(t, err)
	require.Contains(t, string(ubuntu), "conf=/etc/nova/nova.conf")
	require.Contains(t, string(ubuntu), "iniset_sudo $conf DEFAULT transport_url rabbit://openstack")
	require.Contains(t, string(ubuntu), "sudo apt install nova-api")

	// The console block sits outside the distro scope and defaults to
	// ubuntu only, so debian gets just the config block.
	debian, err := os.ReadFile(filepath.Join(cfg.Output["debian"], "compute.sh"))
	require.NoError(t, err)
	require.Contains(t, string(debian), "iniset_sudo $conf")
	require.NotContains(t, string(debian), "apt install")
}

func TestRunFiles_FailedFileDoesNotStopBatch(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.Source.Dir, "bad.rst", ".. only:: ubuntu\n\nno closing tag\n")
	writeSource(t, cfg.Source.Dir, "good.rst", sampleDoc)

	summary, err := New(cfg).RunFiles(context.Background(), []string{"bad.rst", "good.rst"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 1, summary.Succeeded)
	require.Error(t, summary.Results[0].Err)
	require.Empty(t, summary.Results[0].Written)

	_, err = os.Stat(filepath.Join(cfg.Output["ubuntu"], "good.sh"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.Output["ubuntu"], "bad.sh"))
	require.True(t, os.IsNotExist(err))
}

func TestRunFiles_MissingInputReported(t *testing.T) {
	cfg := testConfig(t)

	summary, err := New(cfg).RunFiles(context.Background(), []string{"absent.rst"})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Error(t, summary.Results[0].Err)
}

func TestRunFiles_ConcurrentTriggers_RunsDoNotInterleave(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.Source.Dir, "a.rst", sampleDoc)
	writeSource(t, cfg.Source.Dir, "b.rst", sampleDoc)

	store, err := journal.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	c := New(cfg).WithJournal(store)
	files := []string{"a.rst", "b.rst"}

	var wg sync.WaitGroup
	summaries := make([]*Summary, 2)
	errs := make([]error, 2)
	for i := range summaries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			summaries[i], errs[i] = c.RunFiles(context.Background(), files)
		}(i)
	}
	wg.Wait()

	// Serialized runs record their journal rows in one contiguous stretch
	// each, never mixed with the other run's rows.
	for i, s := range summaries {
		require.NoError(t, errs[i])
		require.Equal(t, 2, s.Succeeded)

		entries, err := store.ByRun(context.Background(), s.RunID)
		require.NoError(t, err)
		require.Len(t, entries, len(files))
		require.Equal(t, entries[0].ID+1, entries[1].ID)
	}
}

func TestDiscoverFiles_WalksSourceTree(t *testing.T) {
	cfg := testConfig(t)
	writeSource(t, cfg.Source.Dir, "b.rst", "text\n")
	writeSource(t, cfg.Source.Dir, filepath.Join("nested", "a.rst"), "text\n")
	writeSource(t, cfg.Source.Dir, "notes.txt", "ignored\n")

	files, err := New(cfg).DiscoverFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"b.rst", filepath.Join("nested", "a.rst")}, files)
}

func TestDiscoverFiles_ConfiguredListWins(t *testing.T) {
	cfg := testConfig(t)
	cfg.Files = []string{"only-this.rst"}
	writeSource(t, cfg.Source.Dir, "other.rst", "text\n")

	files, err := New(cfg).DiscoverFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"only-this.rst"}, files)
}

func TestScriptName(t *testing.T) {
	require.Equal(t, "basics.sh", ScriptName("basics.rst"))
	require.Equal(t, "basics.sh", ScriptName(filepath.Join("nested", "basics.rst")))
}
