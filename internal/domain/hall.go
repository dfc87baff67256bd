package domain

import (
	"context"
	"fmt"
	"slices"
	"time"
)

type Hall struct {
	ID          int
	Name        string
	Rows        int
	SeatsPerRow int
	Seats       []Seat
	CreatedAt   time.Time
}

func (h Hall) TotalSeats() int {
	return h.Rows * h.SeatsPerRow
}

type Seat struct {
	ID         int
	HallID     int
	Row        int
	SeatNumber int
}

// Label combines the alphabetic row label with the seat number,
// e.g. row 2, seat 10 -> "B10". Rows are 1-based by construction,
// so RowLabel cannot fail here.
func (s Seat) Label() string {
	label, _ := RowLabel(s.Row)
	return fmt.Sprintf("%s%d", label, s.SeatNumber)
}

// RowLabel converts a 1-based row index to its spreadsheet-style
// alphabetic label (1 -> A, 26 -> Z, 27 -> AA, 28 -> AB). The
// numbering is bijective base-26: there is no zero digit.
func RowLabel(row int) (string, error) {
	if row <= 0 {
		return "", ErrInvalidRow
	}

	label := make([]byte, 0, 2)

	for row > 0 {
		row--
		label = append(label, byte('A'+row%26))
		row /= 26
	}

	slices.Reverse(label)

	return string(label), nil
}

// NewHallWithSeats builds a hall together with its full seat grid.
// The grid is fixed at creation time; seat counts never change for
// the lifetime of the hall.
func NewHallWithSeats(name string, rows, seatsPerRow int) (*Hall, error) {
	if rows <= 0 || seatsPerRow <= 0 {
		return nil, ErrInvalidHallLayout
	}

	hall := &Hall{
		Name:        name,
		Rows:        rows,
		SeatsPerRow: seatsPerRow,
		Seats:       make([]Seat, 0, rows*seatsPerRow),
	}

	for row := 1; row <= rows; row++ {
		for seatNumber := 1; seatNumber <= seatsPerRow; seatNumber++ {
			hall.Seats = append(hall.Seats, Seat{
				Row:        row,
				SeatNumber: seatNumber,
			})
		}
	}

	return hall, nil
}

type HallRepository interface {
	Create(ctx context.Context, hall *Hall) error
	GetById(ctx context.Context, id int) (*Hall, error)
	GetSeatsByHall(ctx context.Context, hallID int) ([]Seat, error)
	GetSeatsByHallAndIds(ctx context.Context, hallID int, seatIDs []int) ([]Seat, error)
	Delete(ctx context.Context, id int) error
}
