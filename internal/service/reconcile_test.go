package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
)

func newReconciler(t *testing.T, repos *repository.Repositories, cfg *config.Config) *ReconcileService {
	t.Helper()
	return NewReconcileService(repos, NewTraktService(cfg), NewTMDBAccountService(cfg), cfg)
}

func TestToggleMovieLocalMode(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderLocal}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryPlanToWatch,
	}); err != nil {
		t.Fatal(err)
	}

	if err := rec.ToggleMovie(context.Background(), 603, true); err != nil {
		t.Fatalf("本地切换失败: %v", err)
	}
	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryWatched {
		t.Errorf("Category = %q, want watched", entry.Category)
	}

	if err := rec.ToggleMovie(context.Background(), 603, false); err != nil {
		t.Fatal(err)
	}
	entry, _ = repos.Library.Get(603, true)
	if entry.Category != model.CategoryPlanToWatch {
		t.Errorf("Category = %q, want plan_to_watch", entry.Category)
	}
}

func TestToggleMovieMissingEntry(t *testing.T) {
	repos := setupRepos(t)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"added":{"movies":1}}`))
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTrakt, TraktToken: "token", TraktClientID: "cid", TraktBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	// 片库里没有这部电影：直接报错，远端一个请求都不发
	err := rec.ToggleMovie(context.Background(), 603, true)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("应报不存在错误, got %v", err)
	}
	if calls != 0 {
		t.Errorf("远端调用次数 = %d, want 0", calls)
	}

	ok, err := repos.Snapshot.ContainsMovie(model.ProviderTrakt, model.CollectionHistory, 603)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("快照不应出现未入库的电影")
	}
}

func TestToggleMovieRemoteFailureLeavesLocalUntouched(t *testing.T) {
	repos := setupRepos(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTrakt, TraktToken: "token", TraktClientID: "cid", TraktBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryPlanToWatch,
	}); err != nil {
		t.Fatal(err)
	}

	if err := rec.ToggleMovie(context.Background(), 603, true); err == nil {
		t.Fatal("远端失败应报错")
	}

	// 远端失败时本地保持原样，两边不分叉
	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryPlanToWatch {
		t.Errorf("远端失败后 Category = %q, want plan_to_watch", entry.Category)
	}
}

func TestToggleMovieRemoteSuccess(t *testing.T) {
	repos := setupRepos(t)

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"added":{"movies":1}}`))
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTrakt, TraktToken: "token", TraktClientID: "cid", TraktBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryPlanToWatch,
	}); err != nil {
		t.Fatal(err)
	}

	if err := rec.ToggleMovie(context.Background(), 603, true); err != nil {
		t.Fatalf("切换失败: %v", err)
	}
	if gotPath != "/sync/history" {
		t.Errorf("远端路径 = %q, want /sync/history", gotPath)
	}

	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryWatched {
		t.Errorf("Category = %q, want watched", entry.Category)
	}

	// 对账成功后本地快照的已看分区同步刷新
	ok, err := repos.Snapshot.ContainsMovie(model.ProviderTrakt, model.CollectionHistory, 603)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("快照应包含刚标记的电影")
	}

	status, err := rec.MovieStatus(603)
	if err != nil {
		t.Fatal(err)
	}
	if !status.LocalWatched || !status.RemoteWatched {
		t.Errorf("状态 = %+v, want 两侧都已看", status)
	}
}

func TestToggleEpisodesLocalMode(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderLocal}
	rec := newReconciler(t, repos, cfg)

	if err := rec.ToggleEpisodes(context.Background(), 1399, 1, []int{1, 2, 3}, true); err != nil {
		t.Fatal(err)
	}
	status, err := rec.EpisodesStatus(1399, 1, []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if !status.LocalWatched {
		t.Error("三集都应已看")
	}

	if err := rec.ToggleEpisodes(context.Background(), 1399, 1, []int{2}, false); err != nil {
		t.Fatal(err)
	}
	status, err = rec.EpisodesStatus(1399, 1, []int{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if status.LocalWatched {
		t.Error("缺一集就不算全部已看")
	}

	rows, _ := repos.Episode.ListBySeason(1399, 1)
	if len(rows) != 2 {
		t.Errorf("剩余集数 = %d, want 2", len(rows))
	}
	if rows[0].WatchDate == "" {
		t.Error("本地切换应记录观看日期")
	}
}

func TestToggleSeasonPartialProgress(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderLocal}
	rec := newReconciler(t, repos, cfg)

	done, err := rec.ToggleSeason(context.Background(), 1399, 1, []int{1, 2, 3}, true)
	if err != nil {
		t.Fatal(err)
	}
	if done != 3 {
		t.Errorf("完成集数 = %d, want 3", done)
	}

	// 已取消的上下文：不再启动新集，带回已完成的进度
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, err = rec.ToggleSeason(ctx, 1399, 2, []int{1, 2}, true)
	if err == nil {
		t.Fatal("取消后应报错")
	}
	if done != 0 {
		t.Errorf("取消后完成集数 = %d, want 0", done)
	}
}

func TestToggleEpisodesRemoteBatch(t *testing.T) {
	repos := setupRepos(t)

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"added":{"episodes":3}}`))
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTrakt, TraktToken: "token", TraktClientID: "cid", TraktBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	// 多集切换合并为一次远端调用
	if err := rec.ToggleEpisodes(context.Background(), 1399, 1, []int{1, 2, 3}, true); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("远端调用次数 = %d, want 1", calls)
	}

	ok, err := repos.Snapshot.ContainsEpisode(model.ProviderTrakt, model.CollectionHistory, 1399, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("快照应包含刚标记的集")
	}
}

func TestChangeCategoryMirrorsWatchlist(t *testing.T) {
	repos := setupRepos(t)

	type mutation struct {
		MediaType string `json:"media_type"`
		MediaID   int    `json:"media_id"`
		Watchlist *bool  `json:"watchlist"`
	}
	var got []mutation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/acct/watchlist" {
			http.NotFound(w, r)
			return
		}
		var m mutation
		json.NewDecoder(r.Body).Decode(&m)
		got = append(got, m)
		w.Write([]byte(`{"status_code":1}`))
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTMDB, TMDBToken: "token", TMDBAccountID: "acct", TMDBBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryWatched,
	}); err != nil {
		t.Fatal(err)
	}

	// 进入想看：远端加入 + 本地状态 + 快照分区
	if err := rec.ChangeCategory(context.Background(), 603, true, model.CategoryPlanToWatch); err != nil {
		t.Fatalf("修改状态失败: %v", err)
	}
	if len(got) != 1 || got[0].MediaID != 603 || got[0].MediaType != "movie" || got[0].Watchlist == nil || !*got[0].Watchlist {
		t.Fatalf("远端想看变更 = %+v", got)
	}
	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryPlanToWatch {
		t.Errorf("Category = %q, want plan_to_watch", entry.Category)
	}
	ok, err := repos.Snapshot.ContainsMovie(model.ProviderTMDB, model.CollectionWatchlist, 603)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("想看分区应包含该电影")
	}

	// 离开想看：远端移除 + 快照行删掉
	if err := rec.ChangeCategory(context.Background(), 603, true, model.CategoryWatched); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Watchlist == nil || *got[1].Watchlist {
		t.Fatalf("远端想看变更 = %+v", got)
	}
	ok, err = repos.Snapshot.ContainsMovie(model.ProviderTMDB, model.CollectionWatchlist, 603)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("想看分区的行应已删除")
	}
}

func TestChangeCategoryRemoteFailureLeavesLocalUntouched(t *testing.T) {
	repos := setupRepos(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTMDB, TMDBToken: "token", TMDBAccountID: "acct", TMDBBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryWatched,
	}); err != nil {
		t.Fatal(err)
	}

	if err := rec.ChangeCategory(context.Background(), 603, true, model.CategoryPlanToWatch); err == nil {
		t.Fatal("远端失败应报错")
	}
	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryWatched {
		t.Errorf("远端失败后 Category = %q, want watched", entry.Category)
	}
}

func TestChangeCategoryMissingEntry(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderLocal}
	rec := newReconciler(t, repos, cfg)

	err := rec.ChangeCategory(context.Background(), 999, true, model.CategoryWatched)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("应报不存在错误, got %v", err)
	}
}

func TestChangeCategoryLocalModeSkipsRemote(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderLocal}
	rec := newReconciler(t, repos, cfg)

	if err := repos.Library.Upsert(&model.LibraryEntry{
		CatalogID: 603, IsMovie: true, Title: "黑客帝国", Category: model.CategoryWatched,
	}); err != nil {
		t.Fatal(err)
	}
	if err := rec.ChangeCategory(context.Background(), 603, true, model.CategoryPlanToWatch); err != nil {
		t.Fatalf("本地修改失败: %v", err)
	}
	entry, _ := repos.Library.Get(603, true)
	if entry.Category != model.CategoryPlanToWatch {
		t.Errorf("Category = %q, want plan_to_watch", entry.Category)
	}
}

func TestToggleFavorite(t *testing.T) {
	repos := setupRepos(t)

	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"status_code":1}`))
	}))
	defer srv.Close()

	cfg := &config.Config{SyncProvider: model.ProviderTMDB, TMDBToken: "token", TMDBAccountID: "acct", TMDBBaseURL: srv.URL}
	rec := newReconciler(t, repos, cfg)

	if err := rec.ToggleFavorite(context.Background(), 603, true, true); err != nil {
		t.Fatalf("收藏失败: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/account/acct/favorite" {
		t.Errorf("远端路径 = %v", paths)
	}
	ok, err := repos.Snapshot.ContainsMovie(model.ProviderTMDB, model.CollectionFavorites, 603)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("收藏分区应包含该电影")
	}

	if err := rec.ToggleFavorite(context.Background(), 603, true, false); err != nil {
		t.Fatal(err)
	}
	ok, err = repos.Snapshot.ContainsMovie(model.ProviderTMDB, model.CollectionFavorites, 603)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("取消收藏后分区行应删除")
	}
}

func TestToggleFavoriteUnsupportedProvider(t *testing.T) {
	repos := setupRepos(t)
	cfg := &config.Config{SyncProvider: model.ProviderTrakt, TraktToken: "token"}
	rec := newReconciler(t, repos, cfg)

	if err := rec.ToggleFavorite(context.Background(), 603, true, true); !errors.Is(err, model.ErrValidation) {
		t.Errorf("不支持的供应商应报校验错误, got %v", err)
	}
}
