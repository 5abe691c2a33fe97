// Package resilience groups the fault-tolerance helpers used around timetable fetches:
// per-page retries that honor the site's throttling, and a site breaker that ends a run's
// requests once most pages are failing.
//
//	site := circuitbreaker.New("timetable-site", circuitbreaker.SiteSettings())
//	err := retry.Do(ctx, retry.PagePolicy(), sourceID, func(ctx context.Context) error {
//	    _, err := site.Page(func() (string, error) { return fetchPage(ctx, sourceID) })
//	    return err
//	})
package resilience
