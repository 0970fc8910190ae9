package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernwind/tripstore/pkg/types"
)

// setupStore opens a store on a fresh temp directory, with the schema
// migrated, and closes it on cleanup.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Open(types.Config{DataDir: t.TempDir()}))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreLifecycle(t *testing.T) {
	t.Run("open applies the full catalog on a fresh directory", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Open(types.Config{DataDir: t.TempDir()}))
		defer s.Close()
		assert.Len(t, s.AppliedOnOpen(), 5)
	})

	t.Run("reopening an existing database applies nothing", func(t *testing.T) {
		dir := t.TempDir()
		s := New()
		require.NoError(t, s.Open(types.Config{DataDir: dir}))
		require.NoError(t, s.Close())

		s2 := New()
		require.NoError(t, s2.Open(types.Config{DataDir: dir}))
		defer s2.Close()
		assert.Empty(t, s2.AppliedOnOpen())
	})

	t.Run("double open is rejected", func(t *testing.T) {
		s := setupStore(t)
		assert.ErrorIs(t, s.Open(types.Config{DataDir: t.TempDir()}), types.ErrAlreadyOpen)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Open(types.Config{DataDir: t.TempDir()}))
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
	})

	t.Run("operations on a closed store fail", func(t *testing.T) {
		s := New()
		require.NoError(t, s.Open(types.Config{DataDir: t.TempDir()}))
		require.NoError(t, s.Close())

		_, err := s.GetTrip("some-id")
		assert.ErrorIs(t, err, types.ErrStoreClosed)
		_, err = s.DB()
		assert.ErrorIs(t, err, types.ErrStoreClosed)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		s := New()
		err := s.Open(types.Config{DataDir: t.TempDir(), DBFileName: "nested/evil.db"})
		assert.ErrorIs(t, err, types.ErrDBFileNameInvalid)
	})
}

func TestTripCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store)
	}{
		{
			name: "create assigns an id and timestamps",
			check: func(t *testing.T, s *Store) {
				trip := &types.Trip{Name: "Summer in Lisbon", Destination: "Lisbon"}
				id, err := s.CreateTrip(trip)
				require.NoError(t, err)
				assert.NotEmpty(t, id)
				assert.False(t, trip.CreatedAt.IsZero())
			},
		},
		{
			name: "get round-trips all fields",
			check: func(t *testing.T, s *Store) {
				trip := &types.Trip{
					Name:        "Tokyo spring",
					Destination: "Tokyo",
					StartDate:   "2026-03-20",
					EndDate:     "2026-04-02",
				}
				id, err := s.CreateTrip(trip)
				require.NoError(t, err)

				got, err := s.GetTrip(id)
				require.NoError(t, err)
				assert.Equal(t, "Tokyo spring", got.Name)
				assert.Equal(t, "Tokyo", got.Destination)
				assert.Equal(t, "2026-03-20", got.StartDate)
				assert.Equal(t, "2026-04-02", got.EndDate)
			},
		},
		{
			name: "get unknown id returns ErrNotFound",
			check: func(t *testing.T, s *Store) {
				_, err := s.GetTrip("no-such-trip")
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "empty id returns ErrInvalidID",
			check: func(t *testing.T, s *Store) {
				_, err := s.GetTrip("")
				assert.ErrorIs(t, err, types.ErrInvalidID)
			},
		},
		{
			name: "empty name is rejected",
			check: func(t *testing.T, s *Store) {
				_, err := s.CreateTrip(&types.Trip{})
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "update rewrites mutable fields",
			check: func(t *testing.T, s *Store) {
				trip := &types.Trip{Name: "Draft", Destination: "Rome"}
				id, err := s.CreateTrip(trip)
				require.NoError(t, err)

				trip.Name = "Rome anniversary"
				trip.StartDate = "2026-09-12"
				require.NoError(t, s.UpdateTrip(trip))

				got, err := s.GetTrip(id)
				require.NoError(t, err)
				assert.Equal(t, "Rome anniversary", got.Name)
				assert.Equal(t, "2026-09-12", got.StartDate)
			},
		},
		{
			name: "update unknown trip returns ErrNotFound",
			check: func(t *testing.T, s *Store) {
				err := s.UpdateTrip(&types.Trip{TripID: "ghost", Name: "Ghost"})
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "delete removes trip and detaches services",
			check: func(t *testing.T, s *Store) {
				id, err := s.CreateTrip(&types.Trip{Name: "Doomed"})
				require.NoError(t, err)
				svcID, err := s.CreateService(&types.Service{
					Name:     "Hotel Aurora",
					Category: types.CategoryHotel,
					TripID:   &id,
				})
				require.NoError(t, err)

				require.NoError(t, s.DeleteTrip(id))
				_, err = s.GetTrip(id)
				assert.ErrorIs(t, err, types.ErrNotFound)

				svc, err := s.GetService(svcID)
				require.NoError(t, err)
				assert.Nil(t, svc.TripID)

				entries, err := s.DirtyEntries(id)
				require.NoError(t, err)
				assert.Empty(t, entries)
			},
		},
		{
			name: "list returns trips in creation order",
			check: func(t *testing.T, s *Store) {
				_, err := s.CreateTrip(&types.Trip{Name: "First"})
				require.NoError(t, err)
				_, err = s.CreateTrip(&types.Trip{Name: "Second"})
				require.NoError(t, err)

				trips, err := s.ListTrips()
				require.NoError(t, err)
				require.Len(t, trips, 2)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, setupStore(t))
		})
	}
}

func TestServiceCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, s *Store)
	}{
		{
			name: "create and get round-trip including payload",
			check: func(t *testing.T, s *Store) {
				svc := &types.Service{
					Name:     "Grand Hotel Bellevue",
					Category: types.CategoryHotel,
					Source:   "bookingsite",
					Location: "Paris, France",
					Price:    412.50,
					Currency: "EUR",
					Rating:   4.5,
					Payload:  []byte(`{"room":"double","breakfast":true}`),
				}
				id, err := s.CreateService(svc)
				require.NoError(t, err)

				got, err := s.GetService(id)
				require.NoError(t, err)
				assert.Equal(t, svc.Name, got.Name)
				assert.Equal(t, svc.Location, got.Location)
				assert.InDelta(t, 412.50, got.Price, 0.001)
				assert.JSONEq(t, `{"room":"double","breakfast":true}`, string(got.Payload))
				assert.Nil(t, got.TripID)
			},
		},
		{
			name: "unknown category is rejected",
			check: func(t *testing.T, s *Store) {
				_, err := s.CreateService(&types.Service{Name: "X", Category: "submarine"})
				assert.ErrorIs(t, err, types.ErrUnknownCategory)
			},
		},
		{
			name: "empty name is rejected",
			check: func(t *testing.T, s *Store) {
				_, err := s.CreateService(&types.Service{Category: types.CategoryHotel})
				assert.ErrorIs(t, err, types.ErrInvalidData)
			},
		},
		{
			name: "update rewrites the row",
			check: func(t *testing.T, s *Store) {
				svc := &types.Service{Name: "Flight LX123", Category: types.CategoryFlight}
				id, err := s.CreateService(svc)
				require.NoError(t, err)

				svc.Price = 199.99
				svc.Booked = true
				require.NoError(t, s.UpdateService(svc))

				got, err := s.GetService(id)
				require.NoError(t, err)
				assert.True(t, got.Booked)
				assert.InDelta(t, 199.99, got.Price, 0.001)
			},
		},
		{
			name: "delete removes the row",
			check: func(t *testing.T, s *Store) {
				id, err := s.CreateService(&types.Service{Name: "Gone", Category: types.CategoryActivity})
				require.NoError(t, err)
				require.NoError(t, s.DeleteService(id))
				_, err = s.GetService(id)
				assert.ErrorIs(t, err, types.ErrNotFound)
				assert.ErrorIs(t, s.DeleteService(id), types.ErrNotFound)
			},
		},
		{
			name: "services for trip returns only owned services",
			check: func(t *testing.T, s *Store) {
				tripID, err := s.CreateTrip(&types.Trip{Name: "Owned"})
				require.NoError(t, err)
				_, err = s.CreateService(&types.Service{
					Name: "Owned hotel", Category: types.CategoryHotel, TripID: &tripID})
				require.NoError(t, err)
				_, err = s.CreateService(&types.Service{
					Name: "Stray cache row", Category: types.CategoryHotel})
				require.NoError(t, err)

				svcs, err := s.ServicesForTrip(tripID)
				require.NoError(t, err)
				require.Len(t, svcs, 1)
				assert.Equal(t, "Owned hotel", svcs[0].Name)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, setupStore(t))
		})
	}
}
