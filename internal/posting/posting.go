package posting

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Posting is one scraped job listing with its skill text and metadata.
// Enrichment stays nil until a training or assignment pass encodes the
// posting and places it into a cluster; the feature vector and cluster id
// always appear together.
type Posting struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title,omitempty"`
	Company      string `json:"company,omitempty"`
	Location     string `json:"location,omitempty"`
	RawSkillText string `json:"skills,omitempty"`
	ScrapedAt    string `json:"scraped_at,omitempty"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment binds a posting's feature vector and cluster id to the model
// generation that produced them. Assignments from an older generation are
// stale and must not be mixed with results from the current model.
type Enrichment struct {
	Vector     []float64 `json:"vector"`
	Cluster    int       `json:"cluster"`
	Generation string    `json:"generation"`
}

type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, item := range p.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Upsert adds the posting or replaces an existing one with the same id.
// Re-scraped duplicates are updates, not new entries.
func (p *Postings) Upsert(in *Posting) {
	for idx, item := range p.Items {
		if item.ID == in.ID {
			p.Items[idx] = in
			return
		}
	}
	p.Items = append(p.Items, in)
}

// InCluster returns the postings assigned to the given cluster under the
// given model generation. Unassigned and stale postings are left out.
func (p *Postings) InCluster(cluster int, generation string) []*Posting {
	var out []*Posting
	for _, item := range p.Items {
		if item.Enrichment == nil {
			continue
		}
		if item.Enrichment.Generation != generation {
			continue
		}
		if item.Enrichment.Cluster == cluster {
			out = append(out, item)
		}
	}
	return out
}

// IDs returns posting ids in stable sorted order.
func (p *Postings) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	sort.Strings(ids)
	return ids
}

func (p *Postings) Companies() []string {
	seen := make(map[string]struct{})
	companies := make([]string, 0)
	for _, item := range p.Items {
		if item.Company == "" {
			continue
		}
		if _, ok := seen[item.Company]; ok {
			continue
		}
		seen[item.Company] = struct{}{}
		companies = append(companies, item.Company)
	}
	sort.Strings(companies)
	return companies
}

// ReportByCluster groups posting display metadata by cluster id for the
// given model generation. Postings without a current assignment are grouped
// under the "unassigned" key.
func (p *Postings) ReportByCluster(generation string) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range p.Items {
		key := "unassigned"
		if item.Enrichment != nil && item.Enrichment.Generation == generation {
			key = fmt.Sprintf("cluster %d", item.Enrichment.Cluster)
		}
		report[key] = append(report[key], map[string]string{
			"id":       item.ID,
			"title":    item.Title,
			"company":  item.Company,
			"location": item.Location,
			"skills":   item.RawSkillText,
		})
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ScrapedTime parses the posting's scraped-at stamp. The zero time is
// returned when the stamp is missing or malformed.
func (po *Posting) ScrapedTime() time.Time {
	if po.ScrapedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, po.ScrapedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
