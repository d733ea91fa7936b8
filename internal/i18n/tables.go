package i18n

var english = map[string]string{
	"title":                "ActivityWatch Recall",
	"loading":              "Searching...",
	"language_selector":    "Select Language",
	"search_mode_label":    "Search Mode",
	"search_placeholder":   "Ask me anything about your computer usage...",
	"clear_chat":           "Clear Chat",
	"vector_search":        "Vector (semantic)",
	"text_search":          "Text (exact)",
	"database_stats":       "Database Statistics",
	"total_events":         "Total Events",
	"total_buckets":        "Total Buckets",
	"last_updated":         "Last Updated",
	"stats_error":          "Error loading stats: %s",
	"example_queries":      "Example Queries",
	"search_tips":          "Search Tips",
	"search_info":          "Search Info:",
	"search_statistics":    "Search Statistics",
	"search_mode":          "Search Mode",
	"query":                "Query",
	"results_found":        "Results Found",
	"search_time":          "Search Time",
	"top_apps":             "Top Apps",
	"app":                  "App",
	"duration":             "Duration",
	"time":                 "Time",
	"title_col":            "Title",
	"minutes":              "%d min",
	"page":                 "Page",
	"of":                   "of",
	"showing_events":       "Showing events",
	"more_events":          "more events",
	"last_page":            "Last page",
	"previous":             "Previous",
	"next":                 "Next",
	"disabled":             "(disabled)",
	"no_results":           "No matching events found.",
	"search_error":         "Search failed: %s",
	"search_busy":          "A search is already running for this session.",
	"session_started":      "Started session %s",
	"session_resumed":      "Resumed session %s",
	"session_closed":       "Closed session %s",
	"sessions_list":        "Sessions: %s",
	"similarity_threshold": "Similarity Threshold",
	"max_results":          "Max Results",
	"time_filter":          "Time Filter",
	"bucket_filter":        "Bucket Filter",
	"all_time":             "All Time",
	"today":                "Today",
	"yesterday":            "Yesterday",
	"this_week":            "This Week",
	"last_week":            "Last Week",
	"this_month":           "This Month",
	"all_buckets":          "All Buckets",
	"settings":             "Settings",
	"role_user":            "You",
	"role_assistant":       "Recall",
	"console_help":         "Commands: /next /prev /clear /new /sessions /resume ID /close ID /mode vector|text /threshold X /max N /time F /bucket B /lang en|ja /example N /quit",
	"unknown_command":      "Unknown command: %s",
	"invalid_value":        "Invalid value for %s: %s",
}

var englishLists = map[string][]string{
	"example_queries_list": {
		"How much time did I spend coding?",
		"How much time did I spend on WhatsApp?",
		"What apps do I use most?",
	},
	"search_tips_list": {
		`Use specific app names: "Cursor", "WhatsApp", "Chrome"`,
		`Ask about time periods: "today", "yesterday", "this week"`,
		`Search by activity type: "coding", "browsing", "social media"`,
		`Combine terms: "Cursor yesterday", "WhatsApp this week"`,
	},
}

var japanese = map[string]string{
	"title":                "ActivityWatch リコール",
	"loading":              "検索中...",
	"language_selector":    "言語を選択",
	"search_mode_label":    "検索モード",
	"search_placeholder":   "コンピュータの使用状況について質問してください...",
	"clear_chat":           "チャットをクリア",
	"vector_search":        "ベクトル（意味的）",
	"text_search":          "テキスト（完全一致）",
	"database_stats":       "データベース統計",
	"total_events":         "総イベント数",
	"total_buckets":        "総バケット数",
	"last_updated":         "最終更新",
	"stats_error":          "統計の読み込みエラー: %s",
	"example_queries":      "検索例",
	"search_tips":          "検索のヒント",
	"search_info":          "検索情報:",
	"search_statistics":    "検索統計",
	"search_mode":          "検索モード",
	"query":                "クエリ",
	"results_found":        "検索結果",
	"search_time":          "検索時間",
	"top_apps":             "トップアプリ",
	"app":                  "アプリ",
	"duration":             "時間",
	"time":                 "時刻",
	"title_col":            "タイトル",
	"minutes":              "%d 分",
	"page":                 "ページ",
	"of":                   "/",
	"showing_events":       "イベント表示",
	"more_events":          "さらにイベント",
	"last_page":            "最終ページ",
	"previous":             "前へ",
	"next":                 "次へ",
	"disabled":             "（無効）",
	"no_results":           "一致するイベントが見つかりませんでした。",
	"search_error":         "検索に失敗しました: %s",
	"search_busy":          "このセッションでは検索が実行中です。",
	"session_started":      "セッション %s を開始しました",
	"session_resumed":      "セッション %s を再開しました",
	"session_closed":       "セッション %s を閉じました",
	"sessions_list":        "セッション: %s",
	"similarity_threshold": "類似度しきい値",
	"max_results":          "最大結果数",
	"time_filter":          "期間フィルター",
	"bucket_filter":        "バケットフィルター",
	"all_time":             "全期間",
	"today":                "今日",
	"yesterday":            "昨日",
	"this_week":            "今週",
	"last_week":            "先週",
	"this_month":           "今月",
	"all_buckets":          "全バケット",
	"settings":             "設定",
	"role_user":            "あなた",
	"role_assistant":       "リコール",
}

var japaneseLists = map[string][]string{
	"example_queries_list": {
		"コーディングに費やした時間は？",
		"WhatsAppの使用時間は？",
		"最も使用しているアプリは？",
	},
	"search_tips_list": {
		`具体的なアプリ名を使用: "Cursor", "WhatsApp", "Chrome"`,
		`期間を指定: "今日", "昨日", "今週"`,
		`活動タイプで検索: "コーディング", "ブラウジング", "SNS"`,
		`組み合わせて使用: "Cursor 昨日", "WhatsApp 今週"`,
	},
}
