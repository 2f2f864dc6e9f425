package rules

// SampleTOML is a starter rule file written by "config init". The
// patterns show basename globs; priorities order evaluation.
const SampleTOML = `# Custom organization rules. Highest priority wins; the first matching
# rule decides the destination. Destinations are templates relative to
# the organize root.

[[rules]]
name = "Invoices"
pattern = "*invoice*.pdf"
destination = "Documents/Invoices/{year}"
priority = 10
post_action = "echo 'Filed invoice: {name}'"

[[rules]]
name = "Screenshots"
pattern = "Screenshot*.png"
destination = "Images/Screenshots/{year}-{month}"
priority = 5

[[rules]]
name = "Catch-all by month"
pattern = "*"
destination = "Archive/{year}/{month}"
priority = 0
`
