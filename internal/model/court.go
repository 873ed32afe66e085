package model

// Court is a bookable physical resource owned by a club.  BookableFrom and
// BookableTo ("HH:MM") bound the window in which slots are offered for it.
type Court struct {
	ID           string // courts.id
	ClubID       string // courts.club_id
	Name         string // courts.name
	BookableFrom string // courts.bookable_from
	BookableTo   string // courts.bookable_to
}
