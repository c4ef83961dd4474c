package translate

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperr "github.com/openstack-archive/rst2bash/internal/errors"
)

func TestClassify_KnownLabels_MapToActions(t *testing.T) {
	cases := []struct {
		label string
		want  Action
	}{
		{".. code-block:: console", ActionConsole},
		{".. code-block:: mysqlconsole", ActionConsole},
		{".. code-block:: apache", ActionInject},
		{".. code-block:: ini", ActionConfig},
		{".. code-block:: conf", ActionConfig},
	}
	for _, tc := range cases {
		action, err := Classify(tc.label)
		require.NoError(t, err, tc.label)
		require.Equal(t, tc.want, action, tc.label)
	}
}

func TestClassify_UnknownLabel_ReturnsUnsupportedKind(t *testing.T) {
	_, err := Classify(".. code-block:: ruby")
	require.Error(t, err)
	require.True(t, apperr.IsCategory(err, apperr.CategoryKind))
}

func TestTranslate_ConsoleMarkers_MapToPrefixes(t *testing.T) {
	unit, err := Translate("# ls -la\n$ echo hi\n", ".. code-block:: console", []string{"ubuntu"}, "")
	require.NoError(t, err)
	require.Equal(t, ActionConsole, unit.Action)
	require.Equal(t, []string{"sudo ls -la", "echo hi"}, unit.Statements)
}

func TestTranslate_MysqlPrompt_NormalizedToDatabasePrefix(t *testing.T) {
	unit, err := Translate("mysql> CREATE DATABASE nova;\n", ".. code-block:: console", nil, "")
	require.NoError(t, err)
	require.Equal(t, []string{"mysql_exec CREATE DATABASE nova;"}, unit.Statements)
}

func TestTranslate_LineContinuation_PreservedInsideCommand(t *testing.T) {
	unit, err := Translate("$ openstack user create \\\n  --domain default demo\n", ".. code-block:: console", nil, "")
	require.NoError(t, err)
	require.Equal(t, []string{"openstack user create \\\n  --domain default demo"}, unit.Statements)
}

func TestTranslate_ConsoleMultipleCommands_OneStatementPerPrompt(t *testing.T) {
	block := "$ source admin-openrc\n# systemctl restart apache2\nmysql> GRANT ALL ON nova.*;\n"
	unit, err := Translate(block, ".. code-block:: console", nil, "")
	require.NoError(t, err)
	require.Equal(t, []string{
		"source admin-openrc",
		"sudo systemctl restart apache2",
		"mysql_exec GRANT ALL ON nova.*;",
	}, unit.Statements)
}

func TestTranslate_Config_SectionAndAssignment_CommentDropped(t *testing.T) {
	unit, err := Translate("[foo]\nbar=baz\n#skip=1\n", ".. code-block:: ini", nil, "/etc/foo.conf")
	require.NoError(t, err)
	require.Equal(t, ActionConfig, unit.Action)
	require.Equal(t, []string{"foo bar baz"}, unit.Statements)
}

func TestTranslate_Config_SectionSwitches_AcrossLines(t *testing.T) {
	block := "[DEFAULT]\ntransport_url=rabbit://openstack\n[database]\nconnection=mysql+pymysql://nova\nplain text line\n"
	unit, err := Translate(block, ".. code-block:: ini", nil, "/etc/nova/nova.conf")
	require.NoError(t, err)
	require.Equal(t, []string{
		"DEFAULT transport_url rabbit://openstack",
		"database connection mysql+pymysql://nova",
	}, unit.Statements)
}

func TestTranslate_Config_NoSectionYet_EmitsBareKeyValue(t *testing.T) {
	unit, err := Translate("bar=baz\n", ".. code-block:: conf", nil, "")
	require.NoError(t, err)
	require.Equal(t, []string{"bar baz"}, unit.Statements)
}

func TestTranslate_Inject_SingleStatementWithTerminator(t *testing.T) {
	block := "<VirtualHost *:5000>\n  WSGIDaemonProcess keystone\n</VirtualHost>"
	unit, err := Translate(block, ".. code-block:: apache", nil, "/etc/apache2/sites-available/keystone.conf")
	require.NoError(t, err)
	require.Equal(t, ActionInject, unit.Action)
	require.Equal(t, []string{block + "\nEOL\n"}, unit.Statements)
}

func TestTranslate_CarriesDistrosAndPath(t *testing.T) {
	unit, err := Translate("$ true\n", ".. code-block:: console", []string{"ubuntu", "rdo"}, "/etc/x")
	require.NoError(t, err)
	require.Equal(t, []string{"ubuntu", "rdo"}, unit.Distros)
	require.Equal(t, "/etc/x", unit.Path)
}

func TestShellOperator_Unknown_ReturnsUnsupportedOperator(t *testing.T) {
	_, err := shellOperator('%')
	require.Error(t, err)
	require.True(t, apperr.IsCategory(err, apperr.CategoryOperator))
}
