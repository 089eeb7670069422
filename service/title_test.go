package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencms/core/apperr"
	"zencms/model"
)

func TestTitleCurrentUsesClock(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	morning, err := svc.Titles.Add(ctx, model.AddTitleRequest{StartTime: "06:00", EndTime: "11:00", Title: "早安"})
	require.NoError(t, err)
	night, err := svc.Titles.Add(ctx, model.AddTitleRequest{StartTime: "22:00", EndTime: "06:00", Title: "晚安"})
	require.NoError(t, err)

	// 服务时钟固定在 07:30
	current, err := svc.Titles.Current(ctx, model.CurrentTitleRequest{})
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, morning.ID, current.ID)

	current, err = svc.Titles.Current(ctx, model.CurrentTitleRequest{At: "02:15"})
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, night.ID, current.ID)

	current, err = svc.Titles.Current(ctx, model.CurrentTitleRequest{At: "15:00"})
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestTitleValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Titles.Add(ctx, model.AddTitleRequest{StartTime: "7:00", EndTime: "09:00", Title: "x"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Titles.Current(ctx, model.CurrentTitleRequest{At: "25:00"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.Titles.Update(ctx, model.UpdateTitleRequest{ID: "ghost", Title: strPtr("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestTitleUpdateAndDelete(t *testing.T) {
	svc, notifier := newTestServices(t)
	ctx := context.Background()

	title, err := svc.Titles.Add(ctx, model.AddTitleRequest{StartTime: "06:00", EndTime: "11:00", Title: "早安"})
	require.NoError(t, err)

	updated, err := svc.Titles.Update(ctx, model.UpdateTitleRequest{ID: title.ID, EndTime: strPtr("07:00")})
	require.NoError(t, err)
	assert.Equal(t, "07:00", updated.EndTime)

	current, err := svc.Titles.Current(ctx, model.CurrentTitleRequest{})
	require.NoError(t, err)
	assert.Nil(t, current)

	require.NoError(t, svc.Titles.Delete(ctx, model.DeleteTitleRequest{ID: title.ID}))
	assert.Equal(t, model.CollectionTitles, notifier.last().Collection)

	list, err := svc.Titles.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
