package taxonomy

import "github.com/crimson-sun/tiermap/internal/model"

type node struct {
	id       string
	name     string
	desc     string
	children []node
}

// defaultTree is a trimmed IAB Content Taxonomy 3.1 subset used when no
// taxonomy file is configured.
var defaultTree = []node{
	{id: "1", name: "Automotive", desc: "Cars, motorcycles, auto buying and ownership, auto technology and repair", children: []node{
		{id: "2", name: "Auto Body Styles"},
		{id: "30", name: "Auto Buying and Selling"},
		{id: "34", name: "Auto Repair"},
		{id: "35", name: "Auto Technology", children: []node{
			{id: "36", name: "Auto Infotainment Technologies"},
			{id: "37", name: "Auto Navigation Systems"},
		}},
		{id: "38", name: "Motorcycles"},
	}},
	{id: "52", name: "Business and Finance", desc: "Companies, industries, economy, markets, personal finance and careers", children: []node{
		{id: "53", name: "Business", children: []node{
			{id: "54", name: "Business Accounting & Finance"},
			{id: "57", name: "Business I.T."},
		}},
		{id: "80", name: "Economy"},
		{id: "90", name: "Industries"},
		{id: "391", name: "Personal Finance"},
	}},
	{id: "123", name: "Careers", desc: "Job search, career advice, remote work and vocational training", children: []node{
		{id: "124", name: "Apprenticeships"},
		{id: "125", name: "Career Advice"},
		{id: "126", name: "Career Planning"},
		{id: "127", name: "Job Search"},
		{id: "129", name: "Remote Working"},
	}},
	{id: "132", name: "Education", desc: "Schools, universities, adult and online education, homework and study", children: []node{
		{id: "133", name: "Adult Education"},
		{id: "134", name: "Private School"},
		{id: "135", name: "College Education"},
		{id: "137", name: "Early Childhood Education"},
		{id: "142", name: "Homeschooling"},
		{id: "143", name: "Homework and Study"},
		{id: "147", name: "Online Education"},
	}},
	{id: "186", name: "Family and Relationships", desc: "Parenting, marriage, dating, eldercare and family life", children: []node{
		{id: "187", name: "Bereavement"},
		{id: "188", name: "Dating"},
		{id: "189", name: "Divorce"},
		{id: "190", name: "Eldercare"},
		{id: "191", name: "Marriage and Civil Unions"},
		{id: "192", name: "Parenting"},
	}},
	{id: "210", name: "Food & Drink", desc: "Cooking, recipes, restaurants, beverages and dining out", children: []node{
		{id: "211", name: "Alcoholic Beverages"},
		{id: "212", name: "Vegan Diets"},
		{id: "215", name: "Cooking"},
		{id: "216", name: "Desserts and Baking"},
		{id: "217", name: "Dining Out"},
		{id: "222", name: "World Cuisines"},
	}},
	{id: "223", name: "Healthy Living", desc: "Fitness, nutrition, wellness, weight loss and exercise", children: []node{
		{id: "224", name: "Children's Health"},
		{id: "225", name: "Fitness and Exercise"},
		{id: "232", name: "Men's Health"},
		{id: "233", name: "Nutrition"},
		{id: "236", name: "Wellness"},
	}},
	{id: "286", name: "Medical Health", desc: "Diseases and conditions, pharmaceuticals, medical tests and treatments", children: []node{
		{id: "287", name: "Diseases and Conditions"},
		{id: "319", name: "Medical Tests"},
		{id: "320", name: "Pharmaceutical Drugs"},
		{id: "321", name: "Surgery"},
	}},
	{id: "379", name: "Music and Audio", desc: "Music genres, radio, podcasts and audio content", children: []node{
		{id: "380", name: "Adult Contemporary Music"},
		{id: "389", name: "Classical Music"},
		{id: "400", name: "Jazz"},
		{id: "408", name: "Talk Radio"},
	}},
	{id: "453", name: "Religion & Spirituality", desc: "Religious belief, practice, astrology and spirituality", children: []node{
		{id: "454", name: "Astrology"},
	}},
	{id: "483", name: "Sports", desc: "Professional and amateur sports, teams, athletes and sporting events", children: []node{
		{id: "484", name: "American Football"},
		{id: "487", name: "Baseball"},
		{id: "488", name: "Basketball"},
		{id: "533", name: "Soccer"},
		{id: "540", name: "Tennis"},
	}},
	{id: "552", name: "Style & Fashion", desc: "Clothing, beauty, fashion trends, designers and personal style", children: []node{
		{id: "553", name: "Beauty"},
		{id: "559", name: "Body Art"},
		{id: "560", name: "Children's Clothing"},
		{id: "561", name: "Designer Clothing"},
		{id: "574", name: "Men's Fashion"},
		{id: "579", name: "Women's Fashion"},
	}},
	{id: "596", name: "Technology & Computing", desc: "Computing, software, programming, artificial intelligence, consumer electronics and the internet", children: []node{
		{id: "597", name: "Artificial Intelligence"},
		{id: "598", name: "Augmented Reality"},
		{id: "599", name: "Computing", children: []node{
			{id: "600", name: "Computer Networking"},
			{id: "602", name: "Computer Programming"},
			{id: "619", name: "Computer Software and Applications"},
		}},
		{id: "632", name: "Consumer Electronics"},
		{id: "640", name: "Robotics"},
		{id: "641", name: "Virtual Reality"},
	}},
	{id: "653", name: "Travel", desc: "Travel destinations, planning, air travel, hotels and sightseeing", children: []node{
		{id: "654", name: "Travel Accessories"},
		{id: "655", name: "Travel Locations"},
		{id: "672", name: "Travel Preparation and Advice"},
		{id: "673", name: "Travel Type"},
	}},
}

// Default returns the built-in taxonomy subset.
func Default() *Store {
	var cats []model.Category
	for _, root := range defaultTree {
		flatten(root, root.name, nil, &cats)
	}
	s, err := New(cats)
	if err != nil {
		panic("taxonomy: invalid built-in tree: " + err.Error())
	}
	return s
}

// DefaultDescriptions returns the domain descriptions that pair with Default.
func DefaultDescriptions() []DomainDescription {
	out := make([]DomainDescription, len(defaultTree))
	for i, root := range defaultTree {
		out[i] = DomainDescription{Name: root.name, Description: root.name + ": " + root.desc}
	}
	return out
}

func flatten(n node, domain string, parent []string, out *[]model.Category) {
	path := append(append([]string(nil), parent...), n.name)
	*out = append(*out, model.Category{ID: n.id, Name: n.name, Domain: domain, TierPath: path})
	for _, c := range n.children {
		flatten(c, domain, path, out)
	}
}
