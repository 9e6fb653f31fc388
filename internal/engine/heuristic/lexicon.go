package heuristic

// Technical vocabulary. Presence and density of these drive the
// sophistication estimate.
var technicalTerms = []string{
	// English
	"algorithm", "api", "architecture", "benchmark", "bandwidth", "blockchain",
	"compiler", "cryptography", "dataset", "deep learning", "derivative",
	"differential", "throughput", "encryption", "firmware", "framework",
	"gpu", "hyperparameter", "inference", "kernel", "latency", "llm",
	"machine learning", "microservice", "neural network", "optimization",
	"parameter", "protocol", "quantum", "regression", "semiconductor",
	"specification", "statistical", "torque", "transformer", "transmission",
	"horsepower", "hybrid", "powertrain", "drivetrain", "valuation",
	"amortization", "liquidity", "volatility", "macroeconomic", "equity",
	"pharmacokinetics", "clinical trial", "genome", "antibody", "metabolic",
	"diagnosis", "pathology", "methodology", "hypothesis", "empirical",
	// Japanese
	"アルゴリズム", "機械学習", "深層学習", "ニューラルネットワーク", "量子",
	"暗号化", "半導体", "プロトコル", "アーキテクチャ", "レイテンシ",
	"推論", "パラメータ", "最適化", "データセット", "フレームワーク",
	"エンジン", "馬力", "トルク", "燃費", "ハイブリッド", "排気量",
	"決算", "収益", "株価", "機関投資家", "流動性", "評価額", "財務",
	"臨床試験", "遺伝子", "抗体", "診断", "病理", "仮説", "統計",
}

// ageSignals maps an age bucket to phrases that suggest it.
var ageSignals = map[string][]string{
	"18-24": {
		"student", "college", "university", "campus", "dorm", "freshman",
		"exam", "part-time job", "gaming", "esports",
		"大学生", "学生", "サークル", "就活", "バイト", "受験", "キャンパス",
	},
	"25-34": {
		"first job", "new grad", "startup", "career change", "dating",
		"wedding", "first apartment", "side hustle",
		"新卒", "転職", "婚活", "結婚式", "一人暮らし", "副業",
	},
	"30-45": {
		"parenting", "toddler", "kids", "preschool", "family car",
		"mortgage", "minivan", "school run",
		"子育て", "育児", "保育園", "幼稚園", "住宅ローン", "ファミリーカー", "子供",
	},
	"35-54": {
		"retirement", "pension", "executive", "senior management", "portfolio",
		"college fund", "teenager",
		"老後", "年金", "管理職", "役員", "資産運用", "投資信託",
	},
}

// ageOrder breaks ties between buckets with the same signal count.
var ageOrder = []string{"18-24", "25-34", "30-45", "35-54"}

const defaultAgeRange = "25-44"

// domainBaseline is added to the sophistication score for domains whose
// content skews expert.
var domainBaseline = map[string]float64{
	"Technology & Computing": 1.5,
	"Science":                1.5,
	"Medical Health":         1.0,
	"Business and Finance":   1.0,
	"Automotive":             0.5,
	"Education":              0.5,
	"Careers":                0.5,
}

// domainKeywords are interest markers reported in the reader profile.
var domainKeywords = map[string][]string{
	"Automotive":             {"car", "suv", "sedan", "electric vehicle", "ev", "motorcycle", "車", "自動車", "ドライブ", "電気自動車"},
	"Technology & Computing": {"ai", "software", "programming", "computer", "smartphone", "cloud", "人工知能", "ソフトウェア", "プログラミング", "スマートフォン"},
	"Medical Health":         {"health", "doctor", "hospital", "medicine", "健康", "医療", "病院", "薬"},
	"Business and Finance":   {"business", "investment", "stock", "market", "earnings", "ビジネス", "投資", "企業", "市場", "ESG"},
	"Education":              {"school", "learning", "course", "teacher", "教育", "学校", "授業"},
	"Style & Fashion":        {"fashion", "beauty", "makeup", "outfit", "ファッション", "コスメ", "メイク"},
	"Food & Drink":           {"recipe", "restaurant", "cooking", "wine", "レシピ", "料理", "レストラン"},
	"Travel":                 {"travel", "hotel", "flight", "trip", "旅行", "ホテル", "観光"},
	"Sports":                 {"football", "baseball", "soccer", "match", "野球", "サッカー", "試合"},
}

// categoryAliases extends a category's own name words with synonyms,
// including Japanese, for degraded ranking.
var categoryAliases = map[string][]string{
	"Artificial Intelligence":            {"ai", "machine learning", "deep learning", "neural network", "llm", "人工知能", "機械学習", "深層学習", "生成ai"},
	"Computing":                          {"computer", "software", "programming", "コンピューター", "ソフトウェア"},
	"Computer Programming":               {"code", "coding", "developer", "golang", "python", "プログラミング", "開発者"},
	"Computer Networking":                {"network", "router", "tcp", "ネットワーク"},
	"Consumer Electronics":               {"smartphone", "laptop", "headphones", "gadget", "スマートフォン", "家電"},
	"Robotics":                           {"robot", "ロボット"},
	"Virtual Reality":                    {"vr", "headset", "仮想現実"},
	"Augmented Reality":                  {"ar", "mixed reality", "拡張現実"},
	"Auto Body Styles":                   {"suv", "sedan", "hatchback", "coupe", "minivan", "pickup", "セダン", "ミニバン"},
	"Auto Buying and Selling":            {"dealer", "dealership", "lease", "used car", "中古車", "購入", "販売店"},
	"Auto Repair":                        {"mechanic", "repair", "maintenance", "修理", "整備", "車検"},
	"Auto Technology":                    {"hybrid", "electric", "battery", "autonomous", "ハイブリッド", "電気自動車", "自動運転"},
	"Motorcycles":                        {"motorcycle", "motorbike", "バイク", "オートバイ"},
	"Business":                           {"company", "corporate", "management", "企業", "経営"},
	"Economy":                            {"inflation", "gdp", "interest rates", "economy", "景気", "経済", "インフレ"},
	"Industries":                         {"manufacturing", "industry", "sector", "業界", "製造業"},
	"Personal Finance":                   {"savings", "budget", "retirement", "credit card", "貯金", "家計", "老後"},
	"Dining Out":                         {"restaurant", "cafe", "レストラン", "外食"},
	"Cooking":                            {"recipe", "cook", "kitchen", "レシピ", "料理"},
	"Desserts and Baking":                {"cake", "bake", "pastry", "ケーキ", "スイーツ"},
	"Fitness and Exercise":               {"workout", "gym", "running", "筋トレ", "ジム", "ランニング"},
	"Nutrition":                          {"protein", "vitamin", "diet", "栄養", "食事"},
	"Diseases and Conditions":            {"diabetes", "cancer", "symptoms", "糖尿病", "がん", "症状"},
	"Pharmaceutical Drugs":               {"drug", "medication", "prescription", "薬", "処方"},
	"Online Education":                   {"online course", "mooc", "e-learning", "オンライン講座"},
	"College Education":                  {"university", "college", "degree", "大学"},
	"Parenting":                          {"parenting", "kids", "toddler", "子育て", "育児"},
	"Travel Locations":                   {"destination", "city", "beach", "観光地"},
	"Travel Preparation and Advice":      {"packing", "visa", "itinerary", "持ち物"},
	"Women's Fashion":                    {"dress", "skirt", "heels", "ワンピース"},
	"Men's Fashion":                      {"suit", "menswear", "メンズ"},
	"Beauty":                             {"makeup", "skincare", "cosmetics", "コスメ", "メイク", "スキンケア"},
	"Soccer":                             {"football club", "goal", "サッカー"},
	"Baseball":                           {"pitcher", "home run", "野球"},
	"Job Search":                         {"resume", "interview", "job hunting", "就活", "求人", "面接"},
	"Remote Working":                     {"remote", "work from home", "リモートワーク", "在宅勤務"},
	"Astrology":                          {"horoscope", "zodiac", "星占い", "占い"},
	"Computer Software and Applications": {"app", "application", "saas", "アプリ"},
}

var stopWords = map[string]bool{
	"and": true, "the": true, "of": true, "for": true, "in": true, "to": true, "with": true,
}
