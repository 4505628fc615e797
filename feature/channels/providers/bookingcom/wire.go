package bookingcom

import "encoding/xml"

type reservation struct {
	ID         string `xml:"id,attr"`
	Status     string `xml:"status,attr"`
	Guest      guest  `xml:"guest"`
	Room       room   `xml:"room"`
	CheckIn    string `xml:"checkin"`
	CheckOut   string `xml:"checkout"`
	TotalPrice string `xml:"totalprice"`
	Commission string `xml:"commission"`
}

type guest struct {
	Name  string `xml:"name,attr"`
	Email string `xml:"email,attr"`
}

type room struct {
	Type string `xml:"type,attr"`
}

type inventoryRequest struct {
	XMLName xml.Name      `xml:"request"`
	HotelID string        `xml:"hotel_id"`
	Room    inventoryRoom `xml:"room"`
}

type inventoryRoom struct {
	Type      string `xml:"type,attr"`
	Date      string `xml:"date,attr"`
	Available string `xml:"available,omitempty"`
	Price     string `xml:"price,omitempty"`
}

type statusRequest struct {
	XMLName       xml.Name `xml:"request"`
	HotelID       string   `xml:"hotel_id"`
	ReservationID string   `xml:"reservation_id"`
	Status        string   `xml:"status"`
}
