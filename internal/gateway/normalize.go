package gateway

import (
	"fmt"

	"github.com/samber/lo"
)

// VideoItem is the gateway's stable projection of one upstream list entry.
type VideoItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	TypeID   int    `json:"typeId"`
	TypeName string `json:"typeName,omitempty"`
	Time     string `json:"time"`
	Remarks  string `json:"remarks"`
}

// VideoDetail is the full projection returned by the detail endpoint.
type VideoDetail struct {
	ID           int       `json:"id"`
	Introduction string    `json:"introduction"`
	Actors       string    `json:"actors"`
	Director     string    `json:"director"`
	Total        int       `json:"total"`
	Area         string    `json:"area"`
	Year         string    `json:"year"`
	Language     string    `json:"language"`
	Cover        string    `json:"cover"`
	TypeID       int       `json:"typeId"`
	TypeName     string    `json:"typeName"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Remarks      string    `json:"remarks"`
	DoubanURL    string    `json:"doubanUrl"`
	DoubanScore  float64   `json:"doubanScore"`
	Time         string    `json:"time"`
	Episodes     []Episode `json:"episodes"`
}

// TypeItem is one node of the two-level category tree. Children is absent
// on the wire for leaf nodes.
type TypeItem struct {
	ID       int        `json:"id"`
	TypeName string     `json:"typeName"`
	Children []TypeItem `json:"children,omitempty"`
}

func transformVideoItem(item RawVideo) VideoItem {
	return VideoItem{
		ID:       item.ID,
		Title:    item.Name,
		TypeID:   item.TypeID,
		TypeName: item.TypeName,
		Time:     item.Time,
		Remarks:  item.Remarks,
	}
}

// TransformVideoList truncates to at most limit items, preserving upstream
// order, and keeps the per-item typeName.
func TransformVideoList(items []RawVideo, limit int) []VideoItem {
	if limit < 0 {
		limit = 0
	}
	return lo.Map(lo.Subset(items, 0, uint(limit)), func(item RawVideo, _ int) VideoItem {
		return transformVideoItem(item)
	})
}

// TransformVideoListNoType is the /list variant: same truncation, but the
// per-item typeName is dropped (the response carries one typeName at the
// top level instead).
func TransformVideoListNoType(items []RawVideo, limit int) []VideoItem {
	if limit < 0 {
		limit = 0
	}
	return lo.Map(lo.Subset(items, 0, uint(limit)), func(item RawVideo, _ int) VideoItem {
		v := transformVideoItem(item)
		v.TypeName = ""
		return v
	})
}

// BuildDetail projects the first element of an upstream detail list. An
// empty list means the id is unknown upstream.
func BuildDetail(list []RawVideo) (VideoDetail, error) {
	if len(list) == 0 {
		return VideoDetail{}, NewAPIError(CodeNotFound, "")
	}
	vod := list[0]
	return VideoDetail{
		ID:           vod.ID,
		Introduction: vod.Content,
		Actors:       vod.Actor,
		Director:     vod.Director,
		Total:        vod.Total,
		Area:         vod.Area,
		Year:         vod.Year,
		Language:     vod.Lang,
		Cover:        vod.Pic,
		TypeID:       vod.TypeID,
		TypeName:     vod.Class,
		Title:        vod.Name,
		Status:       vod.Status,
		Remarks:      vod.Remarks,
		DoubanURL:    fmt.Sprintf("https://movie.douban.com/subject/%s/", vod.DoubanID),
		DoubanScore:  vod.DoubanScore,
		Time:         vod.Time,
		Episodes:     ParsePlayURL(vod.PlayURL),
	}, nil
}

// TransformCategories builds the two-level category tree from the flat
// upstream rows. Roots keep upstream order; each root's children keep
// upstream order too. The data is exactly two levels deep, so children of
// children are never populated.
func TransformCategories(categories []RawCategory) []TypeItem {
	roots := []TypeItem{}
	for _, root := range categories {
		if root.TypePID != 0 {
			continue
		}
		node := TypeItem{ID: root.TypeID, TypeName: root.TypeName}
		for _, child := range categories {
			if child.TypePID == root.TypeID {
				node.Children = append(node.Children, TypeItem{
					ID:       child.TypeID,
					TypeName: child.TypeName,
				})
			}
		}
		roots = append(roots, node)
	}
	return roots
}
