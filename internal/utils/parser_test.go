package utils

import (
	"reflect"
	"testing"
)

func TestEncodeParseSeasonEpisodes(t *testing.T) {
	tests := []struct {
		name    string
		seasons map[int][]int
		want    string
	}{
		{
			name:    "多季",
			seasons: map[int][]int{1: {1, 2, 3}, 2: {1}},
			want:    "1{1,2,3},2{1}",
		},
		{
			name:    "特别篇第0季",
			seasons: map[int][]int{0: {1, 2}, 1: {1}},
			want:    "0{1,2},1{1}",
		},
		{
			name:    "乱序输入按升序输出",
			seasons: map[int][]int{2: {3, 1, 2}, 1: {5}},
			want:    "1{5},2{1,2,3}",
		},
		{
			name:    "空季",
			seasons: map[int][]int{1: {}},
			want:    "1{}",
		},
		{
			name:    "空映射",
			seasons: map[int][]int{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeSeasonEpisodes(tt.seasons)
			if got != tt.want {
				t.Errorf("EncodeSeasonEpisodes() = %q, want %q", got, tt.want)
			}

			// 往返：编码后再解析必须还原（空集列表除外，解析为 nil 切片）
			parsed := ParseSeasonEpisodes(got)
			if len(parsed) != len(tt.seasons) {
				t.Errorf("往返季数 = %d, want %d", len(parsed), len(tt.seasons))
			}
			for s, eps := range tt.seasons {
				got := parsed[s]
				if len(got) != len(eps) {
					t.Errorf("第 %d 季往返集数 = %d, want %d", s, len(got), len(eps))
				}
			}
		})
	}
}

func TestParseSeasonEpisodesMalformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    map[int][]int
	}{
		{
			name:    "坏片段跳过好片段保留",
			encoded: "1{1,2},garbage,2{3}",
			want:    map[int][]int{1: {1, 2}, 2: {3}},
		},
		{
			name:    "坏集号只丢该集",
			encoded: "1{1,x,3}",
			want:    map[int][]int{1: {1, 3}},
		},
		{
			name:    "纯垃圾",
			encoded: "not-a-season-string",
			want:    map[int][]int{},
		},
		{
			name:    "空串",
			encoded: "",
			want:    map[int][]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSeasonEpisodes(tt.encoded)
			if len(got) != len(tt.want) {
				t.Fatalf("季数 = %d, want %d", len(got), len(tt.want))
			}
			for s, eps := range tt.want {
				if !reflect.DeepEqual(got[s], eps) {
					t.Errorf("第 %d 季 = %v, want %v", s, got[s], eps)
				}
			}
		})
	}
}

func TestSeasonAndEpisodeNumbers(t *testing.T) {
	encoded := "0{1},2{4,5},1{1,2,3}"

	seasons := SeasonNumbers(encoded)
	if !reflect.DeepEqual(seasons, []int{0, 1, 2}) {
		t.Errorf("SeasonNumbers() = %v, want [0 1 2]", seasons)
	}

	episodes := EpisodeNumbers(encoded, 2)
	if !reflect.DeepEqual(episodes, []int{4, 5}) {
		t.Errorf("EpisodeNumbers(2) = %v, want [4 5]", episodes)
	}

	if got := EpisodeNumbers(encoded, 9); len(got) != 0 {
		t.Errorf("不存在的季应返回空, got %v", got)
	}
}

func TestIntList(t *testing.T) {
	if got := JoinIntList([]int{28, 12, 878}); got != "28,12,878" {
		t.Errorf("JoinIntList() = %q", got)
	}
	if got := ParseIntList("28, 12,bad,878,"); !reflect.DeepEqual(got, []int{28, 12, 878}) {
		t.Errorf("ParseIntList() = %v", got)
	}
}
