package api

import (
	"github.com/kurumiimari/hammer/node"
	"net/http"
	"net/url"
	"strconv"
)

func GetIntFromQuery(query url.Values, key string, initial int) int {
	valStr := query.Get(key)
	if valStr == "" {
		return initial
	}
	valI, err := strconv.Atoi(valStr)
	if err != nil || valI < 0 {
		return initial
	}
	return valI
}

func PaginationQuery(count, offset int) url.Values {
	return url.Values{
		"count":  []string{strconv.Itoa(count)},
		"offset": []string{strconv.Itoa(offset)},
	}
}

// paginate applies the count and offset query parameters to auctions.
// A missing count returns everything after offset.
func paginate(auctions []*node.AuctionInfo, r *http.Request) []*node.AuctionInfo {
	q := r.URL.Query()
	offset := GetIntFromQuery(q, "offset", 0)
	count := GetIntFromQuery(q, "count", len(auctions))
	if offset >= len(auctions) {
		return []*node.AuctionInfo{}
	}
	end := offset + count
	if end > len(auctions) {
		end = len(auctions)
	}
	return auctions[offset:end]
}
