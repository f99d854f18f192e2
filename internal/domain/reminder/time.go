package reminder

import "time"

// timeNow is replaced in tests to pin the wall clock.
var timeNow = time.Now
