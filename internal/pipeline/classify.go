package pipeline

import (
	"sync"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// ProgressFunc receives the number of records classified so far and the total.
// Calls are serialized.
type ProgressFunc func(done, total int)

// ClassifyRecords classifies records against the pipeline's rule set. The
// output keeps the input order.
func (p *Pipeline) ClassifyRecords(records []model.BankRecord) []model.ClassifiedRecord {
	return p.classify(records, "", nil)
}

func (p *Pipeline) classify(records []model.BankRecord, importID string, progress ProgressFunc) []model.ClassifiedRecord {
	out := make([]model.ClassifiedRecord, len(records))
	if len(records) == 0 {
		return out
	}

	workers := p.workers
	if workers > len(records) {
		workers = len(records)
	}

	work := make(chan int, len(records))
	for i := range records {
		work <- i
	}
	close(work)

	classifiedAt := p.now()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range work {
				out[i] = model.ClassifiedRecord{
					Record:       records[i],
					Result:       p.rules.ClassifyRecord(records[i]),
					ImportID:     importID,
					ClassifiedAt: classifiedAt,
				}
				if progress != nil {
					mu.Lock()
					done++
					progress(done, len(records))
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return out
}
