// Package openrtb holds the subset of OpenRTB 2.x wire objects the toolkit
// exchanges with external bidders. Field names and json tags follow the IAB
// spec; objects the auction never inspects are kept as raw maps.
package openrtb

import "encoding/json"

// BidRequest is the top-level request object sent to a bidding endpoint.
type BidRequest struct {
	ID     string          `json:"id"`
	Imp    []Imp           `json:"imp"`
	Site   *Site           `json:"site,omitempty"`
	App    *App            `json:"app,omitempty"`
	Device *Device         `json:"device,omitempty"`
	User   *User           `json:"user,omitempty"`
	Test   int8            `json:"test,omitempty"`
	AT     int64           `json:"at,omitempty"`
	TMax   int64           `json:"tmax,omitempty"`
	WSeat  []string        `json:"wseat,omitempty"`
	BSeat  []string        `json:"bseat,omitempty"`
	Cur    []string        `json:"cur,omitempty"`
	BCat   []string        `json:"bcat,omitempty"`
	BAdv   []string        `json:"badv,omitempty"`
	Source *Source         `json:"source,omitempty"`
	Regs   *Regs           `json:"regs,omitempty"`
	Ext    json.RawMessage `json:"ext,omitempty"`
}

// Imp describes an ad placement being auctioned.
type Imp struct {
	ID          string          `json:"id"`
	TagID       string          `json:"tagid,omitempty"`
	BidFloor    float64         `json:"bidfloor,omitempty"`
	BidFloorCur string          `json:"bidfloorcur,omitempty"`
	Secure      *int8           `json:"secure,omitempty"`
	Banner      json.RawMessage `json:"banner,omitempty"`
	Video       json.RawMessage `json:"video,omitempty"`
	Native      json.RawMessage `json:"native,omitempty"`
	Ext         json.RawMessage `json:"ext,omitempty"`
}

type Site struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Domain string   `json:"domain,omitempty"`
	Page   string   `json:"page,omitempty"`
	Cat    []string `json:"cat,omitempty"`
}

type App struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name,omitempty"`
	Bundle string   `json:"bundle,omitempty"`
	Cat    []string `json:"cat,omitempty"`
}

type Device struct {
	UA       string `json:"ua,omitempty"`
	IP       string `json:"ip,omitempty"`
	Language string `json:"language,omitempty"`
	OS       string `json:"os,omitempty"`
	Geo      *Geo   `json:"geo,omitempty"`
}

type Geo struct {
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
	Country string  `json:"country,omitempty"`
}

type User struct {
	ID       string `json:"id,omitempty"`
	BuyerUID string `json:"buyeruid,omitempty"`
}

type Source struct {
	FD     *int8  `json:"fd,omitempty"`
	TID    string `json:"tid,omitempty"`
	PChain string `json:"pchain,omitempty"`
}

type Regs struct {
	COPPA int8            `json:"coppa,omitempty"`
	GDPR  *int8           `json:"gdpr,omitempty"`
	Ext   json.RawMessage `json:"ext,omitempty"`
}

// BidResponse is the top-level response object returned by a bidding endpoint.
type BidResponse struct {
	ID         string          `json:"id"`
	SeatBid    []SeatBid       `json:"seatbid,omitempty"`
	BidID      string          `json:"bidid,omitempty"`
	Cur        string          `json:"cur,omitempty"`
	CustomData string          `json:"customdata,omitempty"`
	NBR        *int64          `json:"nbr,omitempty"`
	Ext        json.RawMessage `json:"ext,omitempty"`
}

// SeatBid groups bids from a single buyer seat.
type SeatBid struct {
	Bid   []Bid           `json:"bid"`
	Seat  string          `json:"seat,omitempty"`
	Group int8            `json:"group,omitempty"`
	Ext   json.RawMessage `json:"ext,omitempty"`
}

// Bid is a single priced offer against one impression.
type Bid struct {
	ID      string          `json:"id"`
	ImpID   string          `json:"impid"`
	Price   float64         `json:"price"`
	NURL    string          `json:"nurl,omitempty"`
	BURL    string          `json:"burl,omitempty"`
	LURL    string          `json:"lurl,omitempty"`
	AdM     string          `json:"adm,omitempty"`
	AdID    string          `json:"adid,omitempty"`
	ADomain []string        `json:"adomain,omitempty"`
	CrID    string          `json:"crid,omitempty"`
	DealID  string          `json:"dealid,omitempty"`
	W       int64           `json:"w,omitempty"`
	H       int64           `json:"h,omitempty"`
	Ext     json.RawMessage `json:"ext,omitempty"`
}
