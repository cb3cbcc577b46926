package launchstore

import (
	"context"
	"database/sql"
)

type OrbitCount struct {
	Orbit    sql.NullString
	Launches int64
}

func (s Store) LaunchesByOrbit(ctx context.Context) ([]OrbitCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT orbit, COUNT(*) AS launches
		FROM launches_merged
		GROUP BY orbit
		ORDER BY launches DESC, orbit ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrbitCount
	for rows.Next() {
		var r OrbitCount
		err = rows.Scan(&r.Orbit, &r.Launches)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type SiteSuccessRate struct {
	Site        sql.NullString
	SuccessRate sql.NullFloat64
	N           int64
}

// LandingSuccessRateBySite averages the outcome per site, counting
// "True ..." outcomes as 1 and "False ..." as 0; "None ..." outcomes do
// not contribute. Sites with fewer than minSamples launches are
// filtered out.
func (s Store) LandingSuccessRateBySite(ctx context.Context, minSamples int64) ([]SiteSuccessRate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT launch_site,
		       AVG(CASE WHEN outcome LIKE 'True %' THEN 1.0
		                WHEN outcome LIKE 'False %' THEN 0.0
		                ELSE NULL END) AS landing_success_rate,
		       COUNT(*) AS n
		FROM launches_merged
		GROUP BY launch_site
		HAVING n >= ?
		ORDER BY landing_success_rate DESC, launch_site ASC`, minSamples)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SiteSuccessRate
	for rows.Next() {
		var r SiteSuccessRate
		err = rows.Scan(&r.Site, &r.SuccessRate, &r.N)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type SitePayload struct {
	Site         sql.NullString
	AvgPayloadKg sql.NullFloat64
	N            int64
}

func (s Store) AvgPayloadBySite(ctx context.Context) ([]SitePayload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT launch_site, ROUND(AVG(payload_mass), 2) AS avg_payload_kg, COUNT(*) AS n
		FROM launches_merged
		GROUP BY launch_site
		ORDER BY avg_payload_kg DESC, launch_site ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SitePayload
	for rows.Next() {
		var r SitePayload
		err = rows.Scan(&r.Site, &r.AvgPayloadKg, &r.N)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type CustomerCount struct {
	Customer string
	Launches int64
}

func (s Store) TopCustomers(ctx context.Context, limit int64) ([]CustomerCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(scraped_customer, 'Unknown') AS customer, COUNT(*) AS launches
		FROM launches_merged
		GROUP BY customer
		ORDER BY launches DESC, customer ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CustomerCount
	for rows.Next() {
		var r CustomerCount
		err = rows.Scan(&r.Customer, &r.Launches)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
