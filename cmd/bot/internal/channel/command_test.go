package channel

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/postrelay/internal/directory"
)

func testOpener(t *testing.T) (opener, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	open := func(context.Context) (*directory.Admin, func(), error) {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return directory.NewAdmin(directory.NewRedisStore(rdb)), func() { rdb.Close() }, nil
	}
	return open, mr
}

func execute(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newChannelCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewChannelCommand(t *testing.T) {
	cmd := NewChannelCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "channel", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.True(t, cmd.HasSubCommands())

	set, _, err := cmd.Find([]string{"set"})
	require.NoError(t, err)
	assert.NotNil(t, set.Flags().Lookup("id"))
	assert.NotNil(t, set.Flags().Lookup("name"))
	assert.NotNil(t, set.Flags().Lookup("admin"))
}

func TestChannelCommand_SetListRemove(t *testing.T) {
	open, mr := testOpener(t)

	out, err := execute(t, open, "set", "--id", "100", "--name", "News", "--admin", "2", "--admin", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "channel News saved with 2 admin(s)")

	name, err := mr.Get("channel:100:name")
	require.NoError(t, err)
	assert.Equal(t, "News", name)
	members, err := mr.SMembers("channel:100:admins")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)

	_, err = execute(t, open, "set", "--id", "@tech", "--admin", "3")
	require.NoError(t, err)

	out, err = execute(t, open, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "News")
	assert.Contains(t, out, "1,2")
	assert.Contains(t, out, "@tech")

	_, err = execute(t, open, "remove", "--id", "100")
	require.NoError(t, err)
	assert.False(t, mr.Exists("channel:100:name"))
	assert.False(t, mr.Exists("channel:100:admins"))

	out, err = execute(t, open, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "News")
}

func TestChannelCommand_SetRequiresAdmin(t *testing.T) {
	open, _ := testOpener(t)

	_, err := execute(t, open, "set", "--id", "100")
	assert.Error(t, err)
}

func TestChannelCommand_ListEmpty(t *testing.T) {
	open, _ := testOpener(t)

	out, err := execute(t, open, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no channels")
}
