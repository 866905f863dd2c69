package gateway

import (
	"net/url"
	"strconv"
)

// Upstream sources all speak the maccms provide/vod dialect: one endpoint,
// behavior selected by the ac query parameter.

// ListResponse is the upstream envelope for ac=list and keyword search.
type ListResponse struct {
	Page      int        `json:"page"`
	PageCount int        `json:"pagecount"`
	Total     int        `json:"total"`
	List      []RawVideo `json:"list"`
}

// DetailResponse is the upstream envelope for ac=detail.
type DetailResponse struct {
	List []RawVideo `json:"list"`
}

// TypesResponse is the upstream envelope for ac=type.
type TypesResponse struct {
	Class []RawCategory `json:"class"`
}

// RawVideo is one upstream record; list responses fill only a subset,
// detail responses fill everything.
type RawVideo struct {
	ID          int     `json:"vod_id"`
	Name        string  `json:"vod_name"`
	PlayURL     string  `json:"vod_play_url"`
	TypeID      int     `json:"type_id"`
	TypeName    string  `json:"type_name"`
	Time        string  `json:"vod_time"`
	Remarks     string  `json:"vod_remarks"`
	Content     string  `json:"vod_content"`
	Actor       string  `json:"vod_actor"`
	Director    string  `json:"vod_director"`
	Total       int     `json:"vod_total"`
	Area        string  `json:"vod_area"`
	Year        string  `json:"vod_year"`
	Lang        string  `json:"vod_lang"`
	Pic         string  `json:"vod_pic"`
	Class       string  `json:"vod_class"`
	Status      string  `json:"vod_status"`
	DoubanID    string  `json:"vod_douban_id"`
	DoubanScore float64 `json:"vod_douban_score"`
}

// RawCategory is one flat upstream category row; TypePID 0 marks a root.
type RawCategory struct {
	TypeID   int    `json:"type_id"`
	TypePID  int    `json:"type_pid"`
	TypeName string `json:"type_name"`
}

// HotTypeID is the upstream category used when /hot is called without an
// explicit typeId ("24-hour hot" short dramas).
const HotTypeID = 58

// ListParams builds the query for a paged catalog listing. typeID may be
// empty to list across all categories.
func ListParams(page int, typeID string) url.Values {
	v := url.Values{}
	v.Set("ac", "list")
	v.Set("pg", strconv.Itoa(page))
	v.Set("t", typeID)
	return v
}

// HotParams builds the query for the 24-hour hot listing.
func HotParams(page, typeID int) url.Values {
	v := url.Values{}
	v.Set("ac", "list")
	v.Set("t", strconv.Itoa(typeID))
	v.Set("h", "24")
	v.Set("pg", strconv.Itoa(page))
	return v
}

// SearchParams builds the query for a keyword search.
func SearchParams(keyword string, page int) url.Values {
	v := url.Values{}
	v.Set("wd", keyword)
	v.Set("pg", strconv.Itoa(page))
	return v
}

// DetailParams builds the query for a single-video detail lookup.
func DetailParams(id string) url.Values {
	v := url.Values{}
	v.Set("ac", "detail")
	v.Set("ids", id)
	return v
}

// TypeParams builds the query for the category listing.
func TypeParams() url.Values {
	v := url.Values{}
	v.Set("ac", "type")
	return v
}
