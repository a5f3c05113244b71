package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 季集编码格式: 季号{集号,集号,...}，片段之间用逗号连接
// 例如 0{1,2},1{1,2,3},2{1}（第 0 季是"特别篇"，可有可无）
var seasonFragmentRe = regexp.MustCompile(`(\d+)\{([^{}]*)\}`)

// EncodeSeasonEpisodes 把 季号->集号列表 编码为季集字符串，季和集都按升序输出
func EncodeSeasonEpisodes(seasons map[int][]int) string {
	if len(seasons) == 0 {
		return ""
	}

	seasonNums := make([]int, 0, len(seasons))
	for s := range seasons {
		seasonNums = append(seasonNums, s)
	}
	sort.Ints(seasonNums)

	fragments := make([]string, 0, len(seasonNums))
	for _, s := range seasonNums {
		episodes := append([]int(nil), seasons[s]...)
		sort.Ints(episodes)

		parts := make([]string, 0, len(episodes))
		for _, e := range episodes {
			parts = append(parts, strconv.Itoa(e))
		}
		fragments = append(fragments, fmt.Sprintf("%d{%s}", s, strings.Join(parts, ",")))
	}
	return strings.Join(fragments, ",")
}

// ParseSeasonEpisodes 解析季集字符串
// 容错要求：不匹配 N{...} 模式的片段直接跳过，任何输入都不会报错
func ParseSeasonEpisodes(encoded string) map[int][]int {
	seasons := make(map[int][]int)
	if encoded == "" {
		return seasons
	}

	for _, match := range seasonFragmentRe.FindAllStringSubmatch(encoded, -1) {
		season, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		var episodes []int
		for _, part := range strings.Split(match[2], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			episode, err := strconv.Atoi(part)
			if err != nil {
				// 单个集号坏了只丢弃该集，不影响整季
				continue
			}
			episodes = append(episodes, episode)
		}
		seasons[season] = episodes
	}
	return seasons
}

// SeasonNumbers 返回编码串中的季号，升序
func SeasonNumbers(encoded string) []int {
	seasons := ParseSeasonEpisodes(encoded)
	nums := make([]int, 0, len(seasons))
	for s := range seasons {
		nums = append(nums, s)
	}
	sort.Ints(nums)
	return nums
}

// EpisodeNumbers 返回编码串中指定季的集号，升序；季不存在返回空
func EpisodeNumbers(encoded string, season int) []int {
	episodes := ParseSeasonEpisodes(encoded)[season]
	sort.Ints(episodes)
	return episodes
}

// JoinIntList 把整数列表编码为逗号分隔字符串（类型 ID 等字段的存储格式）
func JoinIntList(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// ParseIntList 解析逗号分隔的整数列表，坏片段跳过
func ParseIntList(s string) []int {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
