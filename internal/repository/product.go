package repository

import (
	"context"
	"errors"
	"storefront/internal/model"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

const defaultRecommendedLimit = 4

type ProductRepository interface {
	List(ctx context.Context, category string) ([]*model.Product, error)
	FindByID(ctx context.Context, productID int64) (*model.Product, error)
	FindBySlug(ctx context.Context, productSlug string) (*model.Product, error)
	FindMany(ctx context.Context, productIDs []int64) ([]*model.Product, error)
	Recommended(ctx context.Context, productID int64, limit int) ([]*model.Product, error)
}

type productSeed struct {
	id          int64
	name        string
	price       string
	description string
	category    string
	main        string
	gallery     []string
	stock       int
}

var catalogSeed = []productSeed{
	{
		id:          1,
		name:        "Magnetic Frag Rack [Extra Large]",
		price:       "34.99",
		description: "Extra large magnetic frag rack. Holds plugs and frag discs against the glass without drilling or suction cups.",
		category:    "Frag Rack",
		main:        "v1766668115/IMG20250406195809_agngbr.png",
		gallery: []string{
			"v1766668115/IMG20250406195809_agngbr.png",
			"v1766668115/IMG20250406195849_itcncb.png",
			"v1766668115/IMG20250406102606_y0tdge.png",
			"v1766668115/IMG20250406102914_dezk2e.png",
			"v1766668115/IMG20250406114344_loa9ls.png",
		},
		stock: 15,
	},
	{
		id:          2,
		name:        "Magnetic Frag Rack [Large]",
		price:       "29.99",
		description: "Large magnetic frag rack for growing out coral fragments close to the light.",
		category:    "Frag Rack",
		main:        "v1766668739/IMG20250406195739_eqfvod.png",
		gallery: []string{
			"v1766668739/IMG20250406195739_eqfvod.png",
			"v1766668739/IMG20250406200006_dtid8c.png",
			"v1766668739/IMG20250406102858_tyymuw.png",
			"v1766668739/IMG20250406102512_uo4xro.png",
			"v1766668739/IMG20250406102742_xsnfng.png",
		},
		stock: 8,
	},
	{
		id:          3,
		name:        "Magnetic Frag Rack [Standard]",
		price:       "25.99",
		description: "Standard magnetic frag rack sized for nano and mid-size reef tanks.",
		category:    "Frag Rack",
		main:        "v1766668725/IMG20250406195749_h9nelw.png",
		gallery: []string{
			"v1766668725/IMG20250406195749_h9nelw.png",
			"v1766668725/IMG20250406200043_j5j0md.png",
			"v1766668725/IMG20250406102846_mlxuv9.png",
			"v1766668725/IMG20250406102839_bkhfwz.png",
			"v1766668725/IMG20250406102448_d1lpd1.png",
		},
		stock: 10,
	},
	{
		id:          4,
		name:        "Magnetic Frag Rack [TEST]",
		price:       "0.10",
		description: "Low value listing used to exercise live payments end to end.",
		category:    "TEST",
		main:        "v1766668725/IMG20250406195749_h9nelw.png",
		gallery: []string{
			"v1766668725/IMG20250406195749_h9nelw.png",
			"v1766668725/IMG20250406200043_j5j0md.png",
			"v1766668725/IMG20250406102846_mlxuv9.png",
			"v1766668725/IMG20250406102839_bkhfwz.png",
			"v1766668725/IMG20250406102448_d1lpd1.png",
		},
		stock: 10,
	},
}

// catalogRepoImpl serves the product list compiled into the binary. Image
// paths are resolved against the CDN base once, at construction.
type catalogRepoImpl struct {
	products []*model.Product
	byID     map[int64]*model.Product
	bySlug   map[string]*model.Product
}

func NewProductRepository(imageBaseURL string) ProductRepository {
	return newCatalog(imageBaseURL, catalogSeed)
}

func newCatalog(imageBaseURL string, seed []productSeed) *catalogRepoImpl {
	r := &catalogRepoImpl{
		byID:   make(map[int64]*model.Product, len(seed)),
		bySlug: make(map[string]*model.Product, len(seed)),
	}

	for _, s := range seed {
		p := &model.Product{
			ID:          s.id,
			Slug:        slug.Make(s.name),
			Name:        s.name,
			Price:       decimal.RequireFromString(s.price),
			Description: s.description,
			Category:    s.category,
			Image:       imageURL(imageBaseURL, s.main),
			Stock:       s.stock,
		}
		for _, img := range s.gallery {
			p.Images = append(p.Images, imageURL(imageBaseURL, img))
		}
		p.Images = p.Gallery()

		r.products = append(r.products, p)
		r.byID[p.ID] = p
		r.bySlug[p.Slug] = p
	}
	return r
}

func imageURL(base, path string) string {
	if base == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (r *catalogRepoImpl) List(ctx context.Context, category string) ([]*model.Product, error) {
	if category == "" {
		return r.products, nil
	}

	out := []*model.Product{}
	for _, p := range r.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *catalogRepoImpl) FindByID(ctx context.Context, productID int64) (*model.Product, error) {
	p, ok := r.byID[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (r *catalogRepoImpl) FindBySlug(ctx context.Context, productSlug string) (*model.Product, error) {
	p, ok := r.bySlug[strings.ToLower(productSlug)]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// FindMany returns the products that exist, in catalog order. Unknown ids
// are skipped; callers compare lengths when every id must resolve.
func (r *catalogRepoImpl) FindMany(ctx context.Context, productIDs []int64) ([]*model.Product, error) {
	want := make(map[int64]struct{}, len(productIDs))
	for _, id := range productIDs {
		want[id] = struct{}{}
	}

	out := []*model.Product{}
	for _, p := range r.products {
		if _, ok := want[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *catalogRepoImpl) Recommended(ctx context.Context, productID int64, limit int) ([]*model.Product, error) {
	current, ok := r.byID[productID]
	if !ok {
		return []*model.Product{}, nil
	}
	if limit <= 0 {
		limit = defaultRecommendedLimit
	}

	out := []*model.Product{}
	for _, p := range r.products {
		if p.Category != current.Category || p.ID == productID {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
