package reader

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/model"
)

func projectTuple(id string, raised, validated *big.Int, state uint8) []interface{} {
	return []interface{}{
		id,
		"description of " + id,
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		raised,
		validated,
		state,
		big.NewInt(0),
		big.NewInt(1),
	}
}

func TestProjectListSkipsMalformedRecords(t *testing.T) {
	ids := []string{"well", "school", "clinic"}

	session := newFakeSession(func(target chain.Target, method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "totalProjects":
			return []interface{}{big.NewInt(3)}, nil
		case "projectIdAt":
			index := int(args[0].(*big.Int).Int64())
			return []interface{}{ids[index]}, nil
		case "getProject":
			id := args[0].(string)
			if id == "school" {
				// 缺字段的坏记录
				return []interface{}{id, "broken"}, nil
			}
			return projectTuple(id, mustWei("2000000000000000000"), mustWei("500000000000000000"), 1), nil
		}
		return nil, fmt.Errorf("unexpected method %s", method)
	})

	reader := NewProjectReader(session, newTestCache())
	list, err := reader.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, list.Projects, 2)
	assert.Equal(t, 2, list.Stats.TotalProjects)
	assert.Equal(t, "4.00", list.Stats.TotalRaised)
	assert.Equal(t, "1.00", list.Stats.TotalValidated)

	// 总数只读一次
	assert.Equal(t, 1, session.callCounts["totalProjects"])
}

func TestProjectListEmptyWhenUnreachable(t *testing.T) {
	session := newFakeSession(func(target chain.Target, method string, args []interface{}) ([]interface{}, error) {
		return nil, errors.New("no contract code at given address")
	})

	reader := NewProjectReader(session, newTestCache())
	list, err := reader.List(context.Background())
	require.NoError(t, err)

	assert.Empty(t, list.Projects)
	assert.Equal(t, 0, list.Stats.TotalProjects)
	assert.Equal(t, "0.00", list.Stats.TotalRaised)
}

func TestProjectListCached(t *testing.T) {
	session := newFakeSession(func(target chain.Target, method string, args []interface{}) ([]interface{}, error) {
		switch method {
		case "totalProjects":
			return []interface{}{big.NewInt(0)}, nil
		}
		return nil, fmt.Errorf("unexpected method %s", method)
	})

	reader := NewProjectReader(session, newTestCache())
	for i := 0; i < 3; i++ {
		_, err := reader.List(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 1, session.callCounts["totalProjects"])
}

func TestProjectGetNotFound(t *testing.T) {
	session := newFakeSession(func(target chain.Target, method string, args []interface{}) ([]interface{}, error) {
		// 空ID哨兵
		return projectTuple("", big.NewInt(0), big.NewInt(0), 0), nil
	})

	reader := NewProjectReader(session, newTestCache())
	project, err := reader.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestProjectGetDecodes(t *testing.T) {
	session := newFakeSession(func(target chain.Target, method string, args []interface{}) ([]interface{}, error) {
		return projectTuple("well", mustWei("1500000000000000000"), mustWei("1000000000000000000"), 1), nil
	})

	reader := NewProjectReader(session, newTestCache())
	project, err := reader.Get(context.Background(), "well")
	require.NoError(t, err)
	require.NotNil(t, project)

	assert.Equal(t, "well", project.Id)
	assert.Equal(t, model.ProjectStateActive, project.State)
	assert.Equal(t, "1.5", project.AmountRaised)
	assert.Equal(t, "1", project.AmountValidated)
	assert.Equal(t, int64(1), project.CancellationVotes.Int64())
}
