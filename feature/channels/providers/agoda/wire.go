package agoda

import "encoding/xml"

type bookingListRequest struct {
	XMLName    xml.Name `xml:"BookingListRequest"`
	PropertyID string   `xml:"PropertyID,attr"`
	From       string   `xml:"From,attr"`
	To         string   `xml:"To,attr"`
}

type agodaBooking struct {
	BookingID   string     `xml:"BookingID,attr"`
	Status      string     `xml:"Status,attr"`
	Guest       agodaGuest `xml:"Guest"`
	RoomType    string     `xml:"RoomType"`
	CheckIn     string     `xml:"CheckIn"`
	CheckOut    string     `xml:"CheckOut"`
	TotalAmount string     `xml:"TotalAmount"`
	Commission  string     `xml:"Commission"`
}

type agodaGuest struct {
	FirstName string `xml:"FirstName,attr"`
	LastName  string `xml:"LastName,attr"`
	Email     string `xml:"Email,attr"`
}

type availabilityRequest struct {
	XMLName    xml.Name         `xml:"SetAvailabilityRequest"`
	PropertyID string           `xml:"PropertyID,attr"`
	Room       availabilityRoom `xml:"Room"`
}

type availabilityRoom struct {
	RoomType  string `xml:"RoomType,attr"`
	Date      string `xml:"Date,attr"`
	Available string `xml:"Available,attr"`
}

type rateRequest struct {
	XMLName    xml.Name  `xml:"SetRateRequest"`
	PropertyID string    `xml:"PropertyID,attr"`
	Rate       rateEntry `xml:"Rate"`
}

type rateEntry struct {
	RoomType string `xml:"RoomType,attr"`
	Date     string `xml:"Date,attr"`
	Amount   string `xml:"Amount,attr"`
}

type statusRequest struct {
	XMLName    xml.Name `xml:"UpdateBookingStatusRequest"`
	PropertyID string   `xml:"PropertyID,attr"`
	BookingID  string   `xml:"BookingID,attr"`
	Status     string   `xml:"Status,attr"`
}
