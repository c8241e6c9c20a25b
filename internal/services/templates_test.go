package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/finanse/internal/common"
	"github.com/dmitrijs2005/finanse/internal/models"
	"github.com/dmitrijs2005/finanse/internal/remote"
)

func newTestTemplate(id string) *models.FinancialTemplate {
	return &models.FinancialTemplate{
		Id:        id,
		Title:     "Emergency fund basics",
		Content:   "Aim for three months of expenses.",
		Category:  models.TemplateCategorySavingTips,
		CreatedAt: time.UnixMilli(1700000000000).UTC(),
	}
}

func TestTemplateCreate_Propagated(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	tpl := newTestTemplate("tpl1")
	outcome, err := svc.Create(ctx, testPrincipal, tpl)
	require.NoError(t, err)
	assert.Equal(t, OutcomePropagated, outcome)

	stored, err := env.templates.GetByID(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, testPrincipal.UserID, stored.CreatedBy)
	assert.True(t, stored.IsActive)

	doc := env.store.Doc(remote.CollectionTemplates, "tpl1")
	require.NotNil(t, doc)
	assert.Equal(t, "Emergency fund basics", doc["title"])
	assert.Equal(t, 0, doc["views"])
}

func TestTemplateCreate_AdminSystemTemplate(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	tpl := newTestTemplate("tpl1")
	_, err := svc.Create(ctx, adminPrincipal, tpl)
	require.NoError(t, err)

	stored, err := env.templates.GetByID(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, "", stored.CreatedBy)
}

func TestTemplateCreate_RemoteDownDefers(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	env.store.FailKey(remote.CollectionTemplates, "tpl1")

	outcome, err := svc.Create(ctx, testPrincipal, newTestTemplate("tpl1"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeferred, outcome)

	// local write stands
	_, err = env.templates.GetByID(ctx, "tpl1")
	require.NoError(t, err)
}

func TestTemplateUpdate_AuthorGuard(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	tpl := newTestTemplate("tpl1")
	_, err := svc.Create(ctx, testPrincipal, tpl)
	require.NoError(t, err)

	other := testPrincipal
	other.UserID = "u2"
	tpl.Title = "Renamed"
	_, err = svc.Update(ctx, other, tpl)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Delete(ctx, other, "tpl1")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	// admins may do both
	_, err = svc.Update(ctx, adminPrincipal, tpl)
	require.NoError(t, err)
	_, err = svc.Delete(ctx, adminPrincipal, "tpl1")
	require.NoError(t, err)
	assert.Nil(t, env.store.Doc(remote.CollectionTemplates, "tpl1"))
}

func TestTemplateRecordView_PartialRemoteUpdate(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, newTestTemplate("tpl1"))
	require.NoError(t, err)

	outcome, err := svc.RecordView(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, OutcomePropagated, outcome)

	stored, err := env.templates.GetByID(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Views)

	// only the counter changes remotely, the rest of the document survives
	doc := env.store.Doc(remote.CollectionTemplates, "tpl1")
	require.NotNil(t, doc)
	assert.Equal(t, 1, doc["views"])
	assert.Equal(t, "Emergency fund basics", doc["title"])
	assert.Equal(t, 1, env.store.SetCalls(remote.CollectionTemplates, "tpl1"))
}

func TestTemplateRecordView_RemoteDownKeepsLocalIncrement(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	_, err := svc.Create(ctx, testPrincipal, newTestTemplate("tpl1"))
	require.NoError(t, err)

	env.store.FailKey(remote.CollectionTemplates, "tpl1")

	outcome, err := svc.RecordView(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeferred, outcome)

	stored, err := env.templates.GetByID(ctx, "tpl1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Views)
}

func TestTemplateRecordView_NotFound(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)

	_, err := svc.RecordView(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestTemplateGetPopular_Order(t *testing.T) {
	env := setupEnv(t)
	svc := NewTemplateService(env.templates, env.store, env.log)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, testPrincipal, newTestTemplate(id))
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := svc.RecordView(ctx, "b")
		require.NoError(t, err)
	}
	_, err := svc.RecordView(ctx, "c")
	require.NoError(t, err)

	got, err := svc.GetPopular(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Id)
	assert.Equal(t, "c", got[1].Id)
	assert.Equal(t, "a", got[2].Id)
}
