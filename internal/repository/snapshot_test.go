package repository

import (
	"testing"

	"github.com/user/watchbase/internal/model"
)

func TestSnapshotReplaceIsDestructiveAndComplete(t *testing.T) {
	repos := setupTestDB(t)

	old := []model.RemoteSnapshotEntry{
		{MediaType: model.MediaTypeMovie, CatalogID: 100, Title: "旧片一"},
		{MediaType: model.MediaTypeMovie, CatalogID: 200, Title: "旧片二"},
	}
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionWatchlist, old); err != nil {
		t.Fatal(err)
	}

	// 替换后旧行全部消失，新行全部在场
	fresh := []model.RemoteSnapshotEntry{
		{MediaType: model.MediaTypeMovie, CatalogID: 300, Title: "新片"},
	}
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionWatchlist, fresh); err != nil {
		t.Fatal(err)
	}

	rows, err := repos.Snapshot.ListCollection(model.ProviderTrakt, model.CollectionWatchlist)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("行数 = %d, want 1", len(rows))
	}
	if rows[0].CatalogID != 300 {
		t.Errorf("CatalogID = %d, want 300", rows[0].CatalogID)
	}
	if rows[0].Provider != model.ProviderTrakt || rows[0].Collection != model.CollectionWatchlist {
		t.Errorf("分区字段未回填: %+v", rows[0])
	}
}

func TestSnapshotReplaceOnlyTargetPartition(t *testing.T) {
	repos := setupTestDB(t)

	watchlist := []model.RemoteSnapshotEntry{{MediaType: model.MediaTypeMovie, CatalogID: 1}}
	history := []model.RemoteSnapshotEntry{{MediaType: model.MediaTypeMovie, CatalogID: 2}}
	tmdbWatchlist := []model.RemoteSnapshotEntry{{MediaType: model.MediaTypeMovie, CatalogID: 3}}

	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionWatchlist, watchlist); err != nil {
		t.Fatal(err)
	}
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionHistory, history); err != nil {
		t.Fatal(err)
	}
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTMDB, model.CollectionWatchlist, tmdbWatchlist); err != nil {
		t.Fatal(err)
	}

	// 清空一个分区不影响其他 (provider, collection) 分区
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionWatchlist, nil); err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		provider, collection string
		want                 int
	}{
		{model.ProviderTrakt, model.CollectionWatchlist, 0},
		{model.ProviderTrakt, model.CollectionHistory, 1},
		{model.ProviderTMDB, model.CollectionWatchlist, 1},
	}
	for _, c := range checks {
		rows, err := repos.Snapshot.ListCollection(c.provider, c.collection)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != c.want {
			t.Errorf("%s/%s 行数 = %d, want %d", c.provider, c.collection, len(rows), c.want)
		}
	}
}

func TestSnapshotContains(t *testing.T) {
	repos := setupTestDB(t)

	rows := []model.RemoteSnapshotEntry{
		{MediaType: model.MediaTypeMovie, CatalogID: 603},
		{MediaType: model.MediaTypeEpisode, ShowCatalogID: 1399, Season: 1, Episode: 5},
	}
	if err := repos.Snapshot.ReplaceCollection(model.ProviderTrakt, model.CollectionHistory, rows); err != nil {
		t.Fatal(err)
	}

	ok, err := repos.Snapshot.ContainsMovie(model.ProviderTrakt, model.CollectionHistory, 603)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("电影应在历史分区")
	}
	ok, err = repos.Snapshot.ContainsMovie(model.ProviderTrakt, model.CollectionHistory, 604)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("不存在的电影不应在历史分区")
	}

	ok, err = repos.Snapshot.ContainsEpisode(model.ProviderTrakt, model.CollectionHistory, 1399, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("剧集应按所属剧集 ID 命中")
	}
	ok, err = repos.Snapshot.ContainsEpisode(model.ProviderTrakt, model.CollectionHistory, 1399, 1, 6)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("未看的集不应命中")
	}
}

func TestSnapshotAppendAndRemove(t *testing.T) {
	repos := setupTestDB(t)

	if err := repos.Snapshot.AppendRows([]model.RemoteSnapshotEntry{
		{Provider: model.ProviderTrakt, Collection: model.CollectionHistory, MediaType: model.MediaTypeMovie, CatalogID: 11},
		{Provider: model.ProviderTrakt, Collection: model.CollectionHistory, MediaType: model.MediaTypeEpisode, ShowCatalogID: 22, Season: 1, Episode: 1},
		{Provider: model.ProviderTrakt, Collection: model.CollectionHistory, MediaType: model.MediaTypeEpisode, ShowCatalogID: 22, Season: 1, Episode: 2},
	}); err != nil {
		t.Fatal(err)
	}

	if err := repos.Snapshot.RemoveMovie(model.ProviderTrakt, model.CollectionHistory, 11); err != nil {
		t.Fatal(err)
	}
	if err := repos.Snapshot.RemoveEpisodes(model.ProviderTrakt, model.CollectionHistory, 22, 1, []int{2}); err != nil {
		t.Fatal(err)
	}

	rows, err := repos.Snapshot.ListCollection(model.ProviderTrakt, model.CollectionHistory)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("行数 = %d, want 1", len(rows))
	}
	if rows[0].Episode != 1 {
		t.Errorf("剩余集号 = %d, want 1", rows[0].Episode)
	}
}

func TestSnapshotRemoveItemByMediaType(t *testing.T) {
	repos := setupTestDB(t)

	if err := repos.Snapshot.AppendRows([]model.RemoteSnapshotEntry{
		{Provider: model.ProviderTMDB, Collection: model.CollectionWatchlist, MediaType: model.MediaTypeMovie, CatalogID: 100},
		{Provider: model.ProviderTMDB, Collection: model.CollectionWatchlist, MediaType: model.MediaTypeShow, CatalogID: 100},
	}); err != nil {
		t.Fatal(err)
	}

	// 同一目录 ID 的电影行和剧集行互不影响
	if err := repos.Snapshot.RemoveItem(model.ProviderTMDB, model.CollectionWatchlist, model.MediaTypeShow, 100); err != nil {
		t.Fatal(err)
	}

	rows, err := repos.Snapshot.ListCollection(model.ProviderTMDB, model.CollectionWatchlist)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].MediaType != model.MediaTypeMovie {
		t.Errorf("剩余行 = %+v", rows)
	}
}
