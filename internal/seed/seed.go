// Package seed loads the campus demo dataset into a fresh store: the
// four numbered routes with their stops and fleet, the test rider
// accounts, their subscriptions and a handful of notifications.
package seed

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bus_notify/internal/geo"
	"bus_notify/internal/models"
)

type stopSeed struct {
	name string
	desc string
	lat  float64
	lng  float64
}

type routeSeed struct {
	code      string
	name      string
	desc      string
	color     string
	direction string
	freq      int
	start     string
	end       string
	duration  int
	riders    int
	onTime    float64
	stops     []stopSeed
}

var routeSeeds = []routeSeed{
	{
		code: "route-42", name: "Route 42", desc: "Main Campus ↔ Engineering Building",
		color: "#3B82F6", direction: "outbound", freq: 15, start: "07:00", end: "22:00",
		duration: 8, riders: 1250, onTime: 94.2,
		stops: []stopSeed{
			{"Main Campus", "Main Campus Central Hub", 40.7128, -74.0060},
			{"Science Building", "Science and Research Complex", 40.7140, -74.0040},
			{"Engineering Building", "Engineering and Technology Center", 40.7411, -74.0023},
		},
	},
	{
		code: "route-15", name: "Route 15", desc: "Dormitories ↔ Library Complex",
		color: "#10B981", direction: "inbound", freq: 20, start: "06:30", end: "23:30",
		duration: 12, riders: 890, onTime: 91.5,
		stops: []stopSeed{
			{"North Dormitories", "North Campus Residence Halls", 40.7589, -73.9851},
			{"Student Center", "Student Activities and Services", 40.7600, -73.9870},
			{"Library Complex", "Main Library and Study Areas", 40.7620, -73.9890},
		},
	},
	{
		code: "route-88", name: "Route 88", desc: "Medical Center ↔ Sports Complex",
		color: "#8B5CF6", direction: "outbound", freq: 25, start: "08:00", end: "21:00",
		duration: 15, riders: 640, onTime: 88.9,
		stops: []stopSeed{
			{"Medical Center", "University Medical Center", 40.7505, -73.9934},
			{"University Hospital East", "East Wing and Clinics", 40.7515, -73.9880},
			{"Sports Complex", "Athletics and Recreation", 40.7549, -73.9840},
		},
	},
	{
		code: "route-23", name: "Route 23", desc: "Student Housing ↔ Academic Center",
		color: "#F59E0B", direction: "inbound", freq: 12, start: "07:30", end: "22:30",
		duration: 10, riders: 1100, onTime: 96.1,
		stops: []stopSeed{
			{"Student Housing", "South Residence Village", 40.7220, -73.8040},
			{"University Commons", "Dining and Retail", 40.7252, -73.7995},
			{"Academic Center", "Lecture Halls and Labs", 40.7282, -73.7949},
		},
	},
}

type busSeed struct {
	code      string
	plate     string
	capacity  int
	routeCode string
}

var busSeeds = []busSeed{
	{"bus-001", "BUS-001", 45, "route-42"},
	{"bus-002", "BUS-002", 40, "route-15"},
	{"bus-003", "BUS-003", 35, "route-88"},
	{"bus-004", "BUS-004", 50, "route-23"},
	{"bus-005", "BUS-005", 45, "route-42"},
}

// Run populates an empty store with the demo dataset. Idempotent: when
// routes already exist it does nothing.
func Run(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Route{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.Debug("seed skipped: routes already present")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		routeIDs := map[string]uint{}
		stopIDs := map[string][]uint{} // route code -> stop IDs in path order

		for _, rs := range routeSeeds {
			pts := make([]geo.Point, len(rs.stops))
			for i, s := range rs.stops {
				pts[i] = geo.Point{Lat: s.lat, Lng: s.lng}
			}
			geometry, err := geo.LineStringWKB(pts)
			if err != nil {
				return err
			}

			route := models.Route{
				Code:             rs.code,
				Name:             rs.name,
				Description:      rs.desc,
				Color:            rs.color,
				Direction:        rs.direction,
				Status:           models.RouteStatusActive,
				FrequencyMinutes: rs.freq,
				ServiceStart:     rs.start,
				ServiceEnd:       rs.end,
				DistanceKm:       geo.RoundKm(geo.PathLengthKm(pts)),
				DurationMinutes:  rs.duration,
				Geometry:         geometry,
				DailyRiders:      rs.riders,
				OnTimeRate:       rs.onTime,
			}
			if err := tx.Create(&route).Error; err != nil {
				return err
			}
			routeIDs[rs.code] = route.ID

			for i, s := range rs.stops {
				stop := models.Stop{
					Name:        s.name,
					Description: s.desc,
					Seq:         i + 1,
					Lat:         s.lat,
					Lng:         s.lng,
					RouteID:     route.ID,
				}
				if err := tx.Create(&stop).Error; err != nil {
					return err
				}
				stopIDs[rs.code] = append(stopIDs[rs.code], stop.ID)
			}
		}

		for _, bs := range busSeeds {
			bus := models.Bus{
				Code:         bs.code,
				LicensePlate: bs.plate,
				Capacity:     bs.capacity,
				InService:    true,
				RouteID:      routeIDs[bs.routeCode],
			}
			if err := tx.Create(&bus).Error; err != nil {
				return err
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("transit123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		student := models.User{
			Name: "Test Student", Email: "student@university.edu", Phone: "+1234567890",
			Password: string(hash), Role: "rider", Status: models.UserStatusActive,
			EmailEnabled: true, PushEnabled: true, DelayThresholdMinutes: 5,
		}
		faculty := models.User{
			Name: "Test Faculty", Email: "faculty@university.edu", Phone: "+1234567891",
			Password: string(hash), Role: "rider", Status: models.UserStatusActive,
			EmailEnabled: true, SMSEnabled: true, PushEnabled: true, DelayThresholdMinutes: 10,
		}
		admin := models.User{
			Name: "Transit Admin", Email: "admin@university.edu",
			Password: string(hash), Role: "admin", Status: models.UserStatusActive,
			EmailEnabled: true, PushEnabled: true, DelayThresholdMinutes: 5,
		}
		for _, u := range []*models.User{&student, &faculty, &admin} {
			if err := tx.Create(u).Error; err != nil {
				return err
			}
		}

		r15Stops := stopIDs["route-15"]
		subscriptions := []models.Subscription{
			// Empty StopIDs/AlertTypes widen the subscription to the
			// whole route and every alert type.
			{UserID: student.ID, RouteID: routeIDs["route-42"], Active: true},
			{
				UserID: student.ID, RouteID: routeIDs["route-15"], Active: true,
				StopIDs:    []uint{r15Stops[0], r15Stops[2]},
				AlertTypes: []string{models.NotificationDelay, models.NotificationApproaching, models.NotificationDeviation},
			},
			{
				UserID: faculty.ID, RouteID: routeIDs["route-88"], Active: true,
				AlertTypes: []string{models.NotificationDelay, models.NotificationEmergency},
			},
		}
		for i := range subscriptions {
			if err := tx.Create(&subscriptions[i]).Error; err != nil {
				return err
			}
		}

		notifications := []models.Notification{
			{
				UserID: student.ID, Type: models.NotificationDelay,
				Title:   "Route 42 Delayed",
				Message: "Route 42 is running 10 minutes behind schedule due to traffic near Main Campus.",
				RouteID: routeIDs["route-42"],
			},
			{
				UserID: student.ID, Type: models.NotificationApproaching,
				Title:   "Bus Approaching",
				Message: "Your bus is two stops away from Main Campus.",
				RouteID: routeIDs["route-42"], StopID: stopIDs["route-42"][0],
			},
			{
				UserID: student.ID, Type: models.NotificationDeviation,
				Title:   "Route 15 Detour",
				Message: "Route 15 is bypassing Student Center this afternoon.",
				RouteID: routeIDs["route-15"], Read: true,
			},
			{
				UserID: faculty.ID, Type: models.NotificationDelay,
				Title:   "Route 88 Delayed",
				Message: "Route 88 is running 5 minutes behind schedule.",
				RouteID: routeIDs["route-88"],
			},
		}
		for i := range notifications {
			if err := tx.Create(&notifications[i]).Error; err != nil {
				return err
			}
		}

		logrus.WithFields(logrus.Fields{
			"routes": len(routeSeeds),
			"buses":  len(busSeeds),
			"users":  3,
		}).Info("seeded demo dataset")
		return nil
	})
}
